package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
)

// Spec is the root of an OpenAPI 3.1 document.
type Spec struct {
	OpenAPI    string               `json:"openapi"`
	Info       *Info                `json:"info"`
	Servers    []*Server            `json:"servers,omitempty"`
	Tags       []*Tag               `json:"tags,omitempty"`
	Paths      map[string]*PathItem `json:"paths"`
	Components *Components          `json:"components,omitempty"`
}

// Tag names an operation group. Tags are listed in the order first seen.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// NewSpec creates a Spec with the shared error responses and schemas registered.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI: "3.1.0",
		Info: &Info{
			Title:   title,
			Version: version,
		},
		Components: NewComponents(),
		Paths:      make(map[string]*PathItem),
	}
}

func (s *Spec) AddServer(url string) {
	s.Servers = append(s.Servers, &Server{URL: url})
}

func (s *Spec) SetDescription(desc string) {
	s.Info.Description = desc
}

// AddTag registers name once; later calls only fill a missing description.
func (s *Spec) AddTag(name, desc string) {
	i := slices.IndexFunc(s.Tags, func(t *Tag) bool { return t.Name == name })
	if i < 0 {
		s.Tags = append(s.Tags, &Tag{Name: name, Description: desc})
		return
	}
	if s.Tags[i].Description == "" {
		s.Tags[i].Description = desc
	}
}

// Encode renders the document as indented JSON.
func (s *Spec) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ServeSpec serves pre-serialized spec bytes with a content-hash ETag and
// answers matching If-None-Match requests with 304.
func ServeSpec(specBytes []byte) http.HandlerFunc {
	sum := sha256.Sum256(specBytes)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")

		if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(specBytes)
	}
}
