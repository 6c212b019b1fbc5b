// Package aircraft guarda os registros consultados pela API: matrícula,
// histórico de proprietários, acidentes, diretivas de aeronavegabilidade e
// última posição conhecida.
package aircraft

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("aircraft not found")
	ErrNoLiveData = errors.New("live data not found")
)

type Aircraft struct {
	Tail     string `json:"tail"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Serial   string `json:"serial"`
	Category string `json:"category"`
}

type Owner struct {
	Name  string `json:"name"`
	State string `json:"state"`
	From  string `json:"from"`
	To    string `json:"to,omitempty"`
}

type Accident struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Location string `json:"location"`
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
}

const (
	ADOpen     = "open"
	ADComplied = "complied"
)

type ADDirective struct {
	Number    string `json:"number"`
	Subject   string `json:"subject"`
	Effective string `json:"effective"`
	Status    string `json:"status"`
}

type History struct {
	Owners       []Owner       `json:"owners"`
	Accidents    []Accident    `json:"accidents"`
	ADDirectives []ADDirective `json:"adDirectives"`
}

type LivePosition struct {
	Tail    string  `json:"tail"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Alt     int     `json:"alt"`
	Speed   int     `json:"speed"`
	Heading int     `json:"heading"`
	TS      int64   `json:"ts"`
	Src     string  `json:"src"`
}

type Summary struct {
	Tail          string   `json:"tail"`
	RegStatus     string   `json:"regStatus"`
	Airworthiness string   `json:"airworthiness"`
	ADOpenCount   int      `json:"adOpenCount"`
	NTSBAccidents int      `json:"ntsbAccidents"`
	Owners        int      `json:"owners"`
	RiskScore     int      `json:"riskScore"`
	Aircraft      Aircraft `json:"aircraft"`
}

// Record é a unidade gravada pelo ETL: tudo que se sabe de uma matrícula.
type Record struct {
	Aircraft      Aircraft
	RegStatus     string
	Airworthiness string
	History       History
}

// Repository é o lado de leitura usado pelos handlers HTTP.
type Repository interface {
	Summary(ctx context.Context, tail string) (Summary, error)
	History(ctx context.Context, tail string) (History, error)
	Live(ctx context.Context, tail string) (LivePosition, error)
	Search(ctx context.Context, term string) ([]Aircraft, error)
	LivePositions(ctx context.Context, limit int) ([]LivePosition, error)
}

// Sink é o lado de escrita usado pelo ETL.
type Sink interface {
	Upsert(ctx context.Context, rec Record) error
	UpdatePosition(ctx context.Context, pos LivePosition) error
}

// NormalizeTail deixa a matrícula em maiúsculas e sem espaços nas pontas.
func NormalizeTail(tail string) string {
	return strings.ToUpper(strings.TrimSpace(tail))
}

// RiskScore = 10 por diretiva aberta + 25 por acidente, limitado a 100.
func RiskScore(adOpen, accidents int) int {
	score := 10*adOpen + 25*accidents
	if score > 100 {
		return 100
	}
	return score
}

func (r Record) Summary() Summary {
	open := 0
	for _, ad := range r.History.ADDirectives {
		if ad.Status == ADOpen {
			open++
		}
	}
	accidents := len(r.History.Accidents)
	return Summary{
		Tail:          r.Aircraft.Tail,
		RegStatus:     r.RegStatus,
		Airworthiness: r.Airworthiness,
		ADOpenCount:   open,
		NTSBAccidents: accidents,
		Owners:        len(r.History.Owners),
		RiskScore:     RiskScore(open, accidents),
		Aircraft:      r.Aircraft,
	}
}
