// Package connection provides the RESP client used by respkv-cli.
//
// A Client owns one TCP connection and sends commands as RESP arrays:
//
//	c, err := connection.Dial(ctx, "127.0.0.1:6379", 5*time.Second)
//	reply, err := c.Do(ctx, "set", "k", "v", "px", "100")
//
// Replies are decoded into domain.Reply values.
package connection
