package shapes

// Test files are skipped by the parser.
type TestOnly interface {
	Skip()
}
