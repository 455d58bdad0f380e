package server

import (
	"context"
	"fmt"
	"reflect"
)

// Method is the uniform handler contract every registered method is
// normalized to at registration time, regardless of how the underlying
// implementation is written. The dispatcher never branches on handler
// kind — it invokes a Method and waits for the outcome.
type Method func(ctx context.Context, req any) (any, error)

// Service owns a fixed name and a method-name → handler mapping, built
// once at construction and read-only while serving.
type Service struct {
	name    string
	methods map[string]Method
}

// NewService creates an empty service with the given name.
func NewService(name string) *Service {
	return &Service{
		name:    name,
		methods: make(map[string]Method),
	}
}

// Name returns the service name clients address as "Name.Method".
func (s *Service) Name() string {
	return s.name
}

// Register binds a method name to a handler.
func (s *Service) Register(method string, fn Method) {
	s.methods[method] = fn
}

// Method looks up a handler by method name.
func (s *Service) Method(name string) (Method, bool) {
	fn, ok := s.methods[name]
	return fn, ok
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// ServiceFromReceiver builds a service from a struct pointer by scanning
// its exported methods. Methods matching
//
//	func (recv) M(ctx context.Context, req *T) (*R, error)
//
// are wrapped into the uniform Method contract; anything else is skipped.
// The service name is the struct type name.
func ServiceFromReceiver(rcvr any) (*Service, error) {
	typ := reflect.TypeOf(rcvr)
	if typ == nil || typ.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("rpc: receiver must be a pointer, got %T", rcvr)
	}
	if typ.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("rpc: receiver must point to a struct, got %s", typ.Elem().Kind())
	}
	val := reflect.ValueOf(rcvr)

	svc := NewService(typ.Elem().Name())
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		mt := m.Type
		if mt.NumIn() != 3 || mt.NumOut() != 2 ||
			mt.In(1) != contextType || mt.In(2).Kind() != reflect.Pointer ||
			mt.Out(0).Kind() != reflect.Pointer || mt.Out(1) != errorType {
			continue
		}
		svc.Register(m.Name, wrapMethod(val, m))
	}
	return svc, nil
}

// wrapMethod normalizes one reflective method into a Method.
func wrapMethod(rcvr reflect.Value, m reflect.Method) Method {
	argType := m.Type.In(2)
	return func(ctx context.Context, req any) (any, error) {
		argv := reflect.ValueOf(req)
		if !argv.IsValid() || argv.Type() != argType {
			return nil, fmt.Errorf("rpc: %s expects %s, got %T", m.Name, argType, req)
		}
		results := m.Func.Call([]reflect.Value{rcvr, reflect.ValueOf(ctx), argv})
		if !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	}
}
