// Package api serves Arrow to DataFrame conversion over the network.
//
// This package contains:
//   - ArrowServer: length-prefixed TCP endpoint (arrow_server.go)
//   - ZmqServer: ZeroMQ REP endpoint (zmq_server.go)
//   - GRPCServer: unary FrameService/Convert plus grpc health (grpc_server.go)
//   - ArrowHandler: IPC decoding, conversion and response encoding
//   - Client, GRPCClient: clients used by tools and tests
//   - Authenticator and Prometheus metrics shared by both endpoints
//
// Every request carries one Arrow IPC stream. Every reply is a JSON
// FrameResponse holding the columns, the rows and the rendered table, or
// the error that stopped the conversion.
package api
