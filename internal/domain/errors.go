package domain

import "errors"

// Категории ошибок. Транспортный слой сопоставляет их с кодами ответа через KindOf.
var (
	// ErrInvalidArgument — некорректные входные данные (пустой номер продажи, отрицательная цена).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange — количество вне допустимого диапазона, в том числе после слияния позиций.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidState — изменение отменённой продажи.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound — продажа, позиция или товар не найдены.
	ErrNotFound = errors.New("not found")
	// ErrConflict — запись уже существует или изменена параллельно.
	ErrConflict = errors.New("conflict")
)

var (
	// ErrSaleNumberRequired возвращается при пустом номере продажи.
	ErrSaleNumberRequired = newKindError("sale number is required", ErrInvalidArgument)
	// ErrProductIDRequired возвращается при пустом идентификаторе товара.
	ErrProductIDRequired = newKindError("product id is required", ErrInvalidArgument)
	// ErrQuantityOutOfRange возвращается, если количество вне [1, 20].
	ErrQuantityOutOfRange = newKindError("quantity must be between 1 and 20", ErrOutOfRange)
	// ErrQuantityLimitExceeded возвращается, если суммарное количество после слияния больше 20.
	ErrQuantityLimitExceeded = newKindError("cannot sell more than 20 identical items", ErrOutOfRange)
	// ErrUnitPriceNegative относится сразу к двум категориям: OutOfRange и InvalidArgument.
	ErrUnitPriceNegative = newKindError("unit price must be non-negative", ErrOutOfRange, ErrInvalidArgument)
	// ErrSaleCancelled возвращается при попытке изменить отменённую продажу.
	ErrSaleCancelled = newKindError("cannot modify a cancelled sale", ErrInvalidState)
	// ErrSaleNotFound возвращается, если продажа не найдена в репозитории.
	ErrSaleNotFound = newKindError("sale not found", ErrNotFound)
	// ErrSaleItemNotFound возвращается, если в продаже нет позиции с указанным товаром.
	ErrSaleItemNotFound = newKindError("product not found in sale", ErrNotFound)
	// ErrProductNotFound возвращается каталогом товаров.
	ErrProductNotFound = newKindError("product not found", ErrNotFound)
	// ErrSaleAlreadyExists возвращается при повторном добавлении продажи с тем же ID.
	ErrSaleAlreadyExists = newKindError("sale already exists", ErrConflict)
	// ErrSaleVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrSaleVersionConflict = newKindError("sale version conflict", ErrConflict)
	// ErrInvalidPage возвращается при отрицательных параметрах пагинации.
	ErrInvalidPage = newKindError("page and page size must be non-negative", ErrInvalidArgument)
)

var (
	// Ошибка пустого ключа идемпотентности.
	ErrIdempotencyKeyRequired = newKindError("idempotency key is required", ErrInvalidArgument)
	// Ошибка пустого хеша запроса.
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	// Ошибка отсутствующей записи по ключу.
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	// Ключ уже использован тем же запросом.
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	// Ключ уже использован с другим телом запроса.
	ErrIdempotencyHashMismatch = newKindError("idempotency key is already used with different request payload", ErrConflict)
	// Запрос с тем же ключом ещё обрабатывается.
	ErrIdempotencyInProgress = newKindError("request with the same idempotency key is already processing", ErrConflict)
)

// kindError — ошибка с фиксированным текстом, относящаяся к одной или нескольким категориям.
type kindError struct {
	msg   string
	kinds []error
}

func newKindError(msg string, kinds ...error) error {
	return &kindError{msg: msg, kinds: kinds}
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() []error {
	return e.kinds
}

// KindOf возвращает категорию ошибки или nil, если ошибка не доменная.
// OutOfRange проверяется раньше InvalidArgument.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrConflict, ErrNotFound, ErrInvalidState, ErrOutOfRange, ErrInvalidArgument} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrSaleVersionConflict)
}

// IsIdempotencyConflict проверяет, что ключ идемпотентности уже занят.
func IsIdempotencyConflict(err error) bool {
	return errors.Is(err, ErrIdempotencyKeyAlreadyExists) || errors.Is(err, ErrIdempotencyHashMismatch)
}
