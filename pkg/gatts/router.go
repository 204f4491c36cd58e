package gatts

// Router is a Dispatcher backed by per-index handler maps. It is built before
// the profile is registered and must not be modified afterwards.
type Router struct {
	reads  map[uint16]ReadHandler
	writes map[uint16]WriteHandler
}

// NewRouter returns an empty Router: every request falls through to the
// default policy.
func NewRouter() *Router {
	return &Router{
		reads:  make(map[uint16]ReadHandler),
		writes: make(map[uint16]WriteHandler),
	}
}

// HandleRead routes value requests for idx to h.
func (r *Router) HandleRead(idx uint16, h ReadHandler) {
	r.reads[idx] = h
}

// HandleWrite routes writes to idx to h.
func (r *Router) HandleWrite(idx uint16, h WriteHandler) {
	r.writes[idx] = h
}

func (r *Router) ServeValue(req ValueRequest, rsp Responder) error {
	if h, ok := r.reads[req.AttIdx]; ok {
		return h(req, rsp)
	}
	return DefaultRead(req, rsp)
}

func (r *Router) ServeWrite(ind WriteIndication) {
	if h, ok := r.writes[ind.Handle]; ok {
		h(ind)
		return
	}
	DefaultWrite(ind)
}

func (r *Router) ServeAttInfo(req AttInfoRequest, rsp Responder) error {
	return DefaultAttInfo(req, rsp)
}
