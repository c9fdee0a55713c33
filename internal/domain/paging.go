package domain

const (
	// DefaultPageNumber используется, если номер страницы не задан.
	DefaultPageNumber = 1
	// DefaultPageSize используется, если размер страницы не задан.
	DefaultPageSize = 10
	// MaxPageSize — верхняя граница размера страницы.
	MaxPageSize = 100
)

// PageRequest задаёт страницу выборки. Number >= 1, Size в [1, MaxPageSize].
type PageRequest struct {
	Number int
	Size   int
}

// NormalizePageRequest подставляет значения по умолчанию вместо нулей
// и ограничивает размер страницы сверху.
func NormalizePageRequest(number, size int) (PageRequest, error) {
	if number < 0 || size < 0 {
		return PageRequest{}, ErrInvalidPage
	}
	if number == 0 {
		number = DefaultPageNumber
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Number: number, Size: size}, nil
}

// Offset возвращает количество записей, которые нужно пропустить.
func (p PageRequest) Offset() int {
	return (p.Number - 1) * p.Size
}

// SalePage — страница продаж вместе с общим количеством записей.
type SalePage struct {
	Items      []*Sale
	Number     int
	Size       int
	TotalCount int
}

// TotalPages возвращает количество страниц при текущем размере.
func (p SalePage) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.TotalCount + p.Size - 1) / p.Size
}

// HasNext сообщает, есть ли следующая страница.
func (p SalePage) HasNext() bool {
	return p.Number < p.TotalPages()
}

// HasPrevious сообщает, есть ли предыдущая страница.
func (p SalePage) HasPrevious() bool {
	return p.Number > 1
}
