// Package apidocs serves the OpenAPI description of the service and a Swagger
// UI page rendering it.
package apidocs

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v2"
)

// Prefix is the mount point of the documentation routes.
const Prefix = "/api-docs"

//go:embed assets/openapi.yaml assets/index.html
var assets embed.FS

type Docs struct {
	rawYAML  []byte
	jsonDoc  []byte
	page     []byte
	notFound http.Handler
}

// New parses the embedded document and points its server URL at port.
// notFound answers every unknown path below Prefix.
func New(port int, notFound http.Handler) (*Docs, error) {
	raw, err := assets.ReadFile("assets/openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("read openapi.yaml: %w", err)
	}
	page, err := assets.ReadFile("assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("read index.html: %w", err)
	}

	var doc map[interface{}]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	doc["servers"] = []interface{}{
		map[interface{}]interface{}{"url": fmt.Sprintf("http://localhost:%d", port)},
	}

	jsonDoc, err := json.Marshal(toJSONValue(doc))
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}

	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	return &Docs{rawYAML: raw, jsonDoc: jsonDoc, page: page, notFound: notFound}, nil
}

// JSON returns the document as JSON.
func (d *Docs) JSON() []byte { return d.jsonDoc }

func (d *Docs) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		d.notFound.ServeHTTP(w, r)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, Prefix) {
	case "":
		http.Redirect(w, r, Prefix+"/", http.StatusMovedPermanently)
	case "/", "/index.html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(d.page)
	case "/openapi.yaml":
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(d.rawYAML)
	case "/openapi.json":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(d.jsonDoc)
	default:
		d.notFound.ServeHTTP(w, r)
	}
}

// toJSONValue converts the map[interface{}]interface{} trees produced by
// yaml.v2 into values encoding/json accepts.
func toJSONValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = toJSONValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = toJSONValue(val)
		}
		return out
	default:
		return v
	}
}
