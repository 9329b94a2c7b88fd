// Package logging builds the process logger and carries it through context.Context.
//
// Example usage:
//
//	logger := logging.New(os.Stdout, "json", "info")
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.FromContext(ctx).Info("processing request")
//	}
package logging
