package gateway

// Navigator receives forced navigations: the redirect to the login entry
// point when the session terminates, and the guard's redirects. The host
// application decides what a "navigation" means (history push, window
// location, CLI message).
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// NopNavigator discards navigations. Useful in tests and batch tooling.
type NopNavigator struct{}

func (NopNavigator) Navigate(string) {}
