package tools

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var (
	// ErrSpecNotRegistered is the cause of LoadError for unknown spec names.
	ErrSpecNotRegistered = errors.New("tool spec is not registered")
)

// LoadError is returned when the candidate type can not be resolved.
// It is distinct from a negative conformance result.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %q: %s", e.Name, e.Err.Error())
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if the error is caused by LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

var (
	// BaseToolSpecType is the reflect type of BaseToolSpec interface.
	BaseToolSpecType = reflect.TypeOf((*BaseToolSpec)(nil)).Elem()
	// IToolType is the reflect type of ITool interface.
	IToolType = reflect.TypeOf((*ITool)(nil)).Elem()

	contracts = []reflect.Type{BaseToolSpecType, IToolType}
)

var specTypes = struct {
	sync.RWMutex
	types map[string]reflect.Type
}{types: map[string]reflect.Type{}}

// RegisterSpecType registers the spec type by name,
// so it can be resolved by CheckConformanceByName.
// Usually called from init() of the spec package.
func RegisterSpecType(name string, t reflect.Type) {
	specTypes.Lock()
	defer specTypes.Unlock()
	specTypes.types[name] = t
}

// ResolveSpecType returns the registered spec type, or LoadError.
func ResolveSpecType(name string) (reflect.Type, error) {
	specTypes.RLock()
	defer specTypes.RUnlock()

	t, ok := specTypes.types[name]
	if !ok || t == nil {
		return nil, &LoadError{Name: name, Err: ErrSpecNotRegistered}
	}
	return t, nil
}

// RegisteredSpecTypes returns sorted names of the registered specs.
func RegisteredSpecTypes() []string {
	specTypes.RLock()
	defer specTypes.RUnlock()

	names := make([]string, 0, len(specTypes.types))
	for name := range specTypes.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckConformance returns true if the candidate type conforms to the required type.
// For an interface, the candidate or the pointer to it must implement it.
// For a struct, the candidate must be the struct or embed it.
// The check has no side effects.
func CheckConformance(candidate, required reflect.Type) (bool, error) {
	if candidate == nil {
		return false, &LoadError{Name: "<nil>", Err: errors.New("candidate type is not defined")}
	}
	if required == nil {
		return false, &LoadError{Name: "<nil>", Err: errors.New("required type is not defined")}
	}

	if required.Kind() == reflect.Interface {
		if candidate.Implements(required) {
			return true, nil
		}
		if candidate.Kind() != reflect.Ptr && reflect.PointerTo(candidate).Implements(required) {
			return true, nil
		}
		return false, nil
	}

	for _, t := range embedded(candidate) {
		if t == required {
			return true, nil
		}
	}
	return false, nil
}

// CheckConformanceByName resolves the registered spec type by name,
// and checks its conformance to the required type.
func CheckConformanceByName(name string, required reflect.Type) (bool, error) {
	t, err := ResolveSpecType(name)
	if err != nil {
		return false, err
	}
	ok, err := CheckConformance(t, required)
	if err != nil {
		return false, err
	}
	logger.KV(xlog.DEBUG, "spec", name, "type", t.String(), "required", required.String(), "conforms", ok)
	return ok, nil
}

// Ancestry returns the names of the candidate type, the structs it embeds,
// and the tool contracts it implements.
func Ancestry(candidate reflect.Type) []string {
	if candidate == nil {
		return nil
	}
	var names []string
	for _, t := range embedded(candidate) {
		names = append(names, t.Name())
	}
	for _, c := range contracts {
		if ok, _ := CheckConformance(candidate, c); ok {
			names = append(names, c.Name())
		}
	}
	return names
}

// embedded returns the struct type itself, and all embedded types in breadth first order
func embedded(t reflect.Type) []reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	res := []reflect.Type{t}
	seen := map[reflect.Type]bool{t: true}

	for i := 0; i < len(res); i++ {
		cur := res[i]
		if cur.Kind() != reflect.Struct {
			continue
		}
		for j := 0; j < cur.NumField(); j++ {
			f := cur.Field(j)
			if !f.Anonymous {
				continue
			}
			ft := f.Type
			for ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if !seen[ft] {
				seen[ft] = true
				res = append(res, ft)
			}
		}
	}
	return res
}
