package classify

// logf receives the raw failure before classification. It is a no-op until
// SetLogger is called.
var logf = func(format string, args ...interface{}) {}

// SetLogger routes diagnostic output of the classifier. Passing nil disables it.
func SetLogger(fn func(format string, args ...interface{})) {
	if fn == nil {
		fn = func(string, ...interface{}) {}
	}
	logf = fn
}
