package storage

import (
	"context"
	"io"
)

// UploadResult описывает сохранённый объект: ключ в бакете и публичный адрес,
// который отдаётся клиентам вместе с профилем или соревнованием.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — хранилище пользовательских изображений: аватары профилей
// и постеры соревнований. Ключи строят сервисы (avatars/<id>/..., competitions/<id>/...),
// хранилище их не интерпретирует.
type FileUploader interface {
	// Upload перезаписывает объект по ключу.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete удаляет объект; отсутствие объекта ошибкой не считается.
	Delete(ctx context.Context, key string) error

	// GetPublicURL строит адрес объекта без обращения к хранилищу.
	GetPublicURL(key string) string
}
