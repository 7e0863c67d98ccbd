package metadata_test

type commitCall struct {
	StartBlock int
	Count      int
}

// recordingWriter is an in-memory video memory that remembers every commit
type recordingWriter[T any] struct {
	vram    []T
	commits []commitCall
}

func newRecordingWriter[T any](size int) *recordingWriter[T] {
	return &recordingWriter[T]{vram: make([]T, size)}
}

func (w *recordingWriter[T]) Commit(source []T, startBlock, count int) {
	copy(w.vram[startBlock:startBlock+count], source)
	w.commits = append(w.commits, commitCall{StartBlock: startBlock, Count: count})
}

func (w *recordingWriter[T]) VRAM(startBlock, count int) []T {
	return w.vram[startBlock : startBlock+count]
}
