package codec

// Fault is the error record carried in place of a result when a call
// fails on the server. It is a single-field structure encoded under its
// own reserved identifier, so it can never alias a legitimate response
// type: a decoder sees FaultTypeID and knows the payload is an error.
type Fault struct {
	Message string
}

// Error makes *Fault usable directly as the call error surfaced to the
// caller, with the server's message text forwarded verbatim.
func (f *Fault) Error() string {
	return f.Message
}

// faultHandler encodes the error record. Registered by NewRegistry under
// FaultTypeID on every peer — both sides must always agree on this shape.
type faultHandler struct{}

func (faultHandler) ID() int32 {
	return FaultTypeID
}

func (faultHandler) Write(w *Writer, v any) error {
	f, ok := v.(*Fault)
	if !ok {
		return typeMismatch("fault", v)
	}
	w.WriteString(f.Message)
	return nil
}

func (faultHandler) Read(r *Reader) (any, error) {
	msg, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &Fault{Message: msg}, nil
}
