package shaping

import (
	"bytes"
	"net/http"
)

// recorder guarda a resposta do handler interno para decidir sobre o cache
// antes de escrever no cliente.
type recorder struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
}

func (r *recorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(p)
}

// captured é o resultado imutável de uma execução do handler, que pode ser
// compartilhado entre requisições coalescidas.
type captured struct {
	status int
	header http.Header
	body   []byte
	stored bool

	panicked bool
	panicVal any
}

func (c *captured) ok() bool { return c.status >= 200 && c.status < 300 }

// writeTo copia headers e corpo para w. extra roda depois da cópia, antes do WriteHeader.
func (c *captured) writeTo(w http.ResponseWriter, extra func(h http.Header)) {
	h := w.Header()
	for k, vs := range c.header {
		h[k] = append([]string(nil), vs...)
	}
	if extra != nil {
		extra(h)
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.body)
}
