// Package redisserver serves the respkv key space over a subset of the
// Redis serialization protocol.
//
// Framing is line oriented: a "*<N>" header followed by N "$<L>" and content
// line pairs. Content is truncated to L bytes, trimmed and lower-cased, so
// values cannot carry line breaks or preserve case.
//
// Supported commands: PING, ECHO, GET, SET (EX, PX, NX, XX). An empty frame
// or the end of the stream closes the connection.
package redisserver
