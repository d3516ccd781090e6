// Package model defines the data structures exchanged by the gateway: the
// uniform Result type, the authorization payload and request envelopes sent
// to capability endpoints, the capability response shapes the gateway
// destructures, the composed pipeline result, and resource pool records.
//
// # Results
//
// Every operation returns a Result[T]. A Result is built with Ok or Fail and
// therefore always holds exactly one of a value or an error message:
//
//	r := model.Ok(model.PipelineResult{...})
//	r.Success()     // true
//	data, ok := r.Data()
//
//	f := model.Fail[model.PipelineResult](errors.New("Failed to generate image"))
//	f.Error()       // "Failed to generate image"
//
// Its JSON form is the wire contract of the HTTP front door:
//
//	{"success":true,"data":{...}}
//	{"success":false,"data":null,"error":"..."}
package model
