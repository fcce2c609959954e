// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT/SIGTERM, an explicit Trigger (for example a
// listener that failed after startup) or context cancellation, then runs
// the registered hooks in reverse order under a shared deadline:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	if err := h.Wait(); err != nil {
//	    log.Error("shutdown", "error", err)
//	}
package shutdown
