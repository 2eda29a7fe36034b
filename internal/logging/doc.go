// Package logging provides structured logging for notionctl.
//
// Logger wraps Zap with context-aware methods that attach request and tool
// correlation fields, a custom Trace level, and an encoder that redacts
// sensitive keys and Notion integration tokens before anything is written.
//
// Logs always go to stderr. Standard output is reserved for command results
// and for the MCP stdio protocol stream.
//
//	logger, err := logging.NewLogger(logging.NewDefaultConfig(), os.Stderr)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithRequestID(ctx, "req-1")
//	logger.Info(ctx, "dispatch complete", zap.String("tool", "fetch"))
package logging
