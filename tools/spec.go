package tools

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// BaseToolSpec is the contract every tool specification conforms to.
// A spec is a named set of tool functions exposed by one integration.
type BaseToolSpec interface {
	// SpecName returns the name of the spec.
	SpecName() string
	// SpecFunctions returns the names of the tool functions,
	// in the order of registration.
	SpecFunctions() []string
	// ToToolList returns the tools of the spec.
	ToToolList() []ITool
	// GetTool returns the tool by name, or ErrToolNotFound.
	GetTool(name string) (ITool, error)
	// GetFnSchema returns the parameters schema of the tool function.
	GetFnSchema(name string) (any, error)
	// GetMetadata returns the metadata of the tool function.
	GetMetadata(name string) (*Metadata, error)
}

// Metadata describes a tool function.
type Metadata struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Parameters  any    `json:"parameters,omitempty" yaml:"parameters,omitempty" toml:"parameters,omitempty"`
}

// BaseSpec provides BaseToolSpec implementation,
// it must be embedded by the concrete tool specs.
// BaseSpec must not be copied after first use.
type BaseSpec struct {
	name  string
	lock  sync.RWMutex
	tools []ITool
	index map[string]ITool
}

// ensure BaseSpec implements the BaseToolSpec interface
var _ BaseToolSpec = (*BaseSpec)(nil)

// InitSpec sets the spec name and registers the tools.
func (s *BaseSpec) InitSpec(name string, list ...ITool) error {
	if name == "" {
		return errors.New("spec name is required")
	}
	s.lock.Lock()
	s.name = name
	s.lock.Unlock()
	return s.Register(list...)
}

// Register adds tools to the spec.
// Returns error if a tool with the same name is already registered.
func (s *BaseSpec) Register(list ...ITool) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.index == nil {
		s.index = make(map[string]ITool)
	}
	for _, t := range list {
		if t == nil {
			return errors.Errorf("spec %s: nil tool", s.name)
		}
		name := t.Name()
		if _, ok := s.index[name]; ok {
			return errors.Errorf("spec %s: tool %s is already registered", s.name, name)
		}
		s.index[name] = t
		s.tools = append(s.tools, t)
	}
	return nil
}

func (s *BaseSpec) SpecName() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.name
}

func (s *BaseSpec) SpecFunctions() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	names := make([]string, 0, len(s.tools))
	for _, t := range s.tools {
		names = append(names, t.Name())
	}
	return names
}

func (s *BaseSpec) ToToolList() []ITool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]ITool(nil), s.tools...)
}

func (s *BaseSpec) GetTool(name string) (ITool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	t, ok := s.index[name]
	if !ok {
		return nil, errors.WithMessagef(ErrToolNotFound, "spec %s: %s", s.name, name)
	}
	return t, nil
}

func (s *BaseSpec) GetFnSchema(name string) (any, error) {
	t, err := s.GetTool(name)
	if err != nil {
		return nil, err
	}
	return t.Parameters(), nil
}

func (s *BaseSpec) GetMetadata(name string) (*Metadata, error) {
	t, err := s.GetTool(name)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}, nil
}
