package domain

// FetchState различает "ничего не найдено" и "запрос не удался".
type FetchState int

const (
	FetchEmpty FetchState = iota
	FetchFound
	FetchFailed
)

func (s FetchState) String() string {
	switch s {
	case FetchFound:
		return "found"
	case FetchEmpty:
		return "empty"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult - результат чтения из хранилища.
// При FetchFailed Items пуст, а Err содержит причину.
type FetchResult[T any] struct {
	State FetchState
	Items []T
	Err   error
}

// NewFetchResult выбирает состояние по ошибке и количеству строк.
func NewFetchResult[T any](items []T, err error) FetchResult[T] {
	if err != nil {
		return FetchResult[T]{State: FetchFailed, Items: []T{}, Err: err}
	}
	if len(items) == 0 {
		return FetchResult[T]{State: FetchEmpty, Items: []T{}}
	}
	return FetchResult[T]{State: FetchFound, Items: items}
}

func (r FetchResult[T]) Failed() bool { return r.State == FetchFailed }
