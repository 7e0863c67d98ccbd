package metadata

type item[T any] struct {
	data        []T
	usages      int
	startBlock  int
	blocksCount int
	status      ItemStatus

	commit            bool
	commitIfRecovered bool
}

// key is the identity used by the content index: the address of the first source element
func (i *item[T]) key() *T {
	if len(i.data) == 0 {
		return nil
	}
	return &i.data[0]
}
