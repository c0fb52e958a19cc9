package crdt

import "fmt"

func errMismatchedIDs(a, b string) error {
	return fmt.Errorf("crdt: cannot merge different engrams: %s vs %s", a, b)
}
