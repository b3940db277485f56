//go:build !windows

package publish

func createJunction(_, _ string) error {
	return ErrUnsupported
}
