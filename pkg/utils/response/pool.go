package response

import "sync"

// pool recycles Response objects across requests. High-traffic endpoints
// build one Response per call; pooling keeps that allocation-free.
var pool = sync.Pool{
	New: func() interface{} {
		return &Response{}
	},
}

// Acquire returns a zeroed Response from the pool.
func Acquire() *Response {
	return pool.Get().(*Response)
}

// Release resets the Response and returns it to the pool. The Response
// must not be used after Release.
func Release(r *Response) {
	if r == nil {
		return
	}
	r.Code = 0
	r.HTTPCode = 0
	r.Message = ""
	r.Data = nil
	r.RequestID = ""
	r.Timestamp = 0
	pool.Put(r)
}
