package notifier

import "errors"

var (
	// ErrSendEmail возвращается, когда письмо не удалось отправить
	ErrSendEmail = errors.New("notifier: failed to send email")

	// ErrPublishEvent возвращается, когда событие не удалось опубликовать
	ErrPublishEvent = errors.New("notifier: failed to publish event")

	// ErrEncodeEvent возвращается, когда событие не удалось сериализовать
	ErrEncodeEvent = errors.New("notifier: failed to encode event")

	// ErrSenderPanic возвращается, когда канал доставки запаниковал
	ErrSenderPanic = errors.New("notifier: sender panicked")
)
