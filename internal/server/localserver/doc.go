// Package localserver serves the RESP protocol on a Unix domain socket.
//
// The socket gives processes on the same host access to the key space
// without opening a TCP port. File system permissions control access: the
// socket is created with mode 0600 unless configured otherwise. Rate
// limiting does not apply since every peer shares one local address.
//
// respkv-cli reaches it with --server unix:/path/to/respkv.sock.
package localserver
