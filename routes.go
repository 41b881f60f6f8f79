package route

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// ServeRoutes registers a GET endpoint at path that lists the endpoints
// registered through r as JSON.
func (r *Router) ServeRoutes(path string) {
	Handle(r, GET(path).InSummary("List endpoints").Tagged("meta"), func(*Request, NoBody) (Response, error) {
		return OK(r.Endpoints()), nil
	})
}

// WriteRoutes writes the endpoint list as indented JSON to w.
func (r *Router) WriteRoutes(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Endpoints())
}

// WriteRoutesYAML writes the endpoint list as YAML to w.
func (r *Router) WriteRoutesYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.Endpoints()); err != nil {
		return err
	}
	return enc.Close()
}
