package interfaces

import "context"

// HashStore - абстракция хеш-ориентированного key-value хранилища.
// Значения непрозрачны; числа и время хранятся строками.
type HashStore interface {
	// Exists сообщает, существует ли ключ.
	Exists(ctx context.Context, key string) (bool, error)
	// HGet возвращает значение поля и признак его наличия.
	HGet(ctx context.Context, key, field string) (string, bool, error)
	// HSet записывает (перезаписывает) набор полей.
	HSet(ctx context.Context, key string, values map[string]string) error
	// HSetNX записывает поле, только если его ещё нет. Возвращает true, если запись произошла.
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	// HGetAll возвращает все поля хеша. Для отсутствующего ключа - пустая мапа.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HScan возвращает ленивый итератор по полям хеша. Каждый вызов начинает новый проход.
	HScan(ctx context.Context, key string) HashIterator
}

// HashIterator перебирает пары поле/значение. Использование:
//
//	for it.Next(ctx) { it.Field(); it.Value() }
//	if err := it.Err(); err != nil { ... }
type HashIterator interface {
	Next(ctx context.Context) bool
	Field() string
	Value() string
	Err() error
}
