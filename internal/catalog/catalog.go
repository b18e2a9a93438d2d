// Package catalog holds the clinic's static service table and resolves
// caller phrasing onto canonical service names.
package catalog

import (
	"fmt"
	"strings"
)

// GeneralService is the value callers send when no specific service was chosen.
const GeneralService = "General"

// ServiceDefinition describes one bookable service.
type ServiceDefinition struct {
	CanonicalName   string   `json:"canonical_name"`
	Price           string   `json:"price"`
	DurationMinutes int      `json:"duration_minutes"`
	Category        string   `json:"category"`
	Aliases         []string `json:"-"`
}

// Catalog is an ordered, read-only set of services. Build it once with New and
// share the pointer; nothing mutates it afterwards.
type Catalog struct {
	services []ServiceDefinition
	index    map[string]int
}

// New validates the definitions and builds a Catalog in the given order.
func New(defs ...ServiceDefinition) (*Catalog, error) {
	c := &Catalog{
		services: make([]ServiceDefinition, 0, len(defs)),
		index:    make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		name := strings.TrimSpace(def.CanonicalName)
		if name == "" {
			return nil, fmt.Errorf("catalog: service with empty canonical name")
		}
		key := normalize(name)
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate service %q", name)
		}
		if def.DurationMinutes <= 0 {
			return nil, fmt.Errorf("catalog: service %q has non-positive duration", name)
		}

		def.CanonicalName = name
		aliases := make([]string, 0, len(def.Aliases))
		for _, alias := range def.Aliases {
			if a := normalize(alias); a != "" {
				aliases = append(aliases, a)
			}
		}
		def.Aliases = aliases

		c.index[key] = len(c.services)
		c.services = append(c.services, def)
	}
	return c, nil
}

// MustNew is New for package-level tables; it panics on invalid input.
func MustNew(defs ...ServiceDefinition) *Catalog {
	c, err := New(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve maps requested onto a canonical service name. An exact,
// case-insensitive match on a canonical name wins; otherwise the first entry
// (in catalog order) with an alias contained in the request is returned.
func (c *Catalog) Resolve(requested string) (string, bool) {
	if c == nil {
		return "", false
	}
	key := normalize(requested)
	if key == "" {
		return "", false
	}

	if i, ok := c.index[key]; ok {
		return c.services[i].CanonicalName, true
	}

	for _, svc := range c.services {
		for _, alias := range svc.Aliases {
			if strings.Contains(key, alias) {
				return svc.CanonicalName, true
			}
		}
	}
	return "", false
}

// ResolutionKind classifies a service request.
type ResolutionKind int

const (
	// Unknown means the caller named a service the clinic does not offer.
	Unknown ResolutionKind = iota
	// Unspecified means the caller asked for no particular service.
	Unspecified
	// Resolved means the request matched a catalog entry.
	Resolved
)

// Resolution is the outcome of ResolveRequest.
type Resolution struct {
	Kind      ResolutionKind
	Requested string
	// Service is the canonical name, or GeneralService when unspecified.
	Service string
}

// OK reports whether the request may continue through the pipeline.
func (r Resolution) OK() bool {
	return r.Kind != Unknown
}

// ResolveRequest distinguishes "no service" (empty or GeneralService) from an
// unrecognised one. Unspecified requests pass through as GeneralService.
func (c *Catalog) ResolveRequest(requested string) Resolution {
	res := Resolution{Requested: strings.TrimSpace(requested)}
	key := normalize(requested)
	if key == "" || key == normalize(GeneralService) {
		res.Kind = Unspecified
		res.Service = GeneralService
		return res
	}
	if name, ok := c.Resolve(requested); ok {
		res.Kind = Resolved
		res.Service = name
	}
	return res
}

// Lookup returns the definition stored under a canonical name.
func (c *Catalog) Lookup(canonical string) (ServiceDefinition, bool) {
	if c == nil {
		return ServiceDefinition{}, false
	}
	i, ok := c.index[normalize(canonical)]
	if !ok {
		return ServiceDefinition{}, false
	}
	return c.services[i], true
}

// Details resolves requested and returns the matching definition.
func (c *Catalog) Details(requested string) (ServiceDefinition, bool) {
	name, ok := c.Resolve(requested)
	if !ok {
		return ServiceDefinition{}, false
	}
	return c.Lookup(name)
}

// Names lists canonical names in catalog order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.services))
	for i, svc := range c.services {
		names[i] = svc.CanonicalName
	}
	return names
}

// All returns a copy of every definition in catalog order.
func (c *Catalog) All() []ServiceDefinition {
	if c == nil {
		return nil
	}
	out := make([]ServiceDefinition, len(c.services))
	for i, svc := range c.services {
		svc.Aliases = append([]string(nil), svc.Aliases...)
		out[i] = svc
	}
	return out
}

// Len returns the number of services.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.services)
}
