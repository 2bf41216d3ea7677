package bbtest

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/okian/ringstats/internal/domain/model"
)

// ExportPath is the path the fake server answers on.
const ExportPath = "/export.php"

// Response is a canned HTTP reply.
type Response struct {
	Status int
	Body   string
}

// Server is an httptest server answering export requests from canned
// responses keyed by the raw query string. Unknown queries get 404.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	requests  []*http.Request
}

// NewServer starts a fake export server. Callers must Close it.
func NewServer() *Server {
	s := &Server{responses: make(map[string]Response)}
	mux := http.NewServeMux()
	mux.HandleFunc(ExportPath, s.handle)
	s.Server = httptest.NewServer(mux)
	return s
}

// Respond registers a reply for the exact raw query string.
func (s *Server) Respond(rawQuery string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[rawQuery] = Response{Status: status, Body: body}
}

// RespondEvents registers a 200 reply rendering events as export XML.
func (s *Server) RespondEvents(rawQuery string, events ...model.Event) {
	s.Respond(rawQuery, http.StatusOK, XML(events...))
}

// Requests returns the requests received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*http.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(r.Context()))
	resp, ok := s.responses[r.URL.RawQuery]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
}

type xmlRinger struct {
	Bell int    `xml:"bell,attr"`
	Name string `xml:",chardata"`
}

type xmlPerformance struct {
	ID      string      `xml:"id,attr"`
	Ringers []xmlRinger `xml:"ringers>ringer"`
}

type xmlPerformances struct {
	XMLName      xml.Name         `xml:"performances"`
	Performances []xmlPerformance `xml:"performance"`
}

// XML renders events in the BellBoard export layout.
func XML(events ...model.Event) string {
	doc := xmlPerformances{Performances: make([]xmlPerformance, 0, len(events))}
	for _, ev := range events {
		p := xmlPerformance{ID: ev.ID}
		for i, name := range ev.Performers {
			p.Ringers = append(p.Ringers, xmlRinger{Bell: i + 1, Name: name})
		}
		doc.Performances = append(doc.Performances, p)
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	enc := xml.NewEncoder(&b)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		panic(err)
	}
	return b.String()
}
