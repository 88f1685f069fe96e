package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajivgeraev/slotswap-api/internal/cache"
	"github.com/rajivgeraev/slotswap-api/internal/models"
	"github.com/rajivgeraev/slotswap-api/internal/storage"
)

// Decision представляет решение целевого пользователя по запросу на
// обмен. Набор закрытый: любое другое значение отклоняется.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Engine ведёт жизненный цикл обмена и поддерживает согласованность
// трёх документов: двух событий и запроса на обмен. Все
// мультидокументные изменения выполняются в одной транзакции
// хранилища, переходы статусов — условными обновлениями.
type Engine struct {
	store     storage.Store
	projCache *cache.Cache
}

// New создает движок обменов поверх переданного хранилища.
// projCache может быть nil — тогда инвалидация проекций не выполняется.
func New(store storage.Store, projCache *cache.Cache) *Engine {
	return &Engine{store: store, projCache: projCache}
}

// ProposeParams описывает предложение обмена: два события и два
// участника
type ProposeParams struct {
	SenderEventID uuid.UUID
	TargetEventID uuid.UUID
	SenderUserID  uuid.UUID
	TargetUserID  uuid.UUID
}

// Propose создает запрос на обмен и блокирует оба события.
//
// Предусловия: событие отправителя принадлежит отправителю, событие
// цели — цели, оба в статусе Swappable, участники различны. Переход
// Swappable -> Swap Pending выполняется условным обновлением внутри
// транзакции, поэтому два конкурентных предложения на одно событие не
// могут пройти оба.
func (e *Engine) Propose(ctx context.Context, p ProposeParams) (*models.SwapRequest, error) {
	if p.SenderUserID == p.TargetUserID {
		return nil, validationErrorf("нельзя предложить обмен самому себе")
	}
	if p.SenderEventID == p.TargetEventID {
		return nil, validationErrorf("нельзя обменять событие на него же")
	}

	senderEvent, err := e.findEvent(ctx, e.store, p.SenderEventID)
	if err != nil {
		return nil, err
	}
	targetEvent, err := e.findEvent(ctx, e.store, p.TargetEventID)
	if err != nil {
		return nil, err
	}

	if senderEvent.OwnerID != p.SenderUserID {
		return nil, validationErrorf("событие %s не принадлежит отправителю", p.SenderEventID)
	}
	if targetEvent.OwnerID != p.TargetUserID {
		return nil, validationErrorf("событие %s не принадлежит целевому пользователю", p.TargetEventID)
	}
	if senderEvent.Status != models.EventStatusSwappable {
		return nil, validationErrorf("событие отправителя недоступно для обмена: статус %q", senderEvent.Status)
	}
	if targetEvent.Status != models.EventStatusSwappable {
		return nil, validationErrorf("целевое событие недоступно для обмена: статус %q", targetEvent.Status)
	}

	request := &models.SwapRequest{
		ID:            uuid.New(),
		SenderUserID:  p.SenderUserID,
		TargetUserID:  p.TargetUserID,
		SenderEventID: p.SenderEventID,
		TargetEventID: p.TargetEventID,
		Status:        models.SwapStatusPending,
	}

	err = e.store.WithTx(ctx, func(tx storage.Store) error {
		// Условный переход перечитывает статус непосредственно перед
		// записью: проигравшее конкурентное предложение откатится целиком
		ok, err := tx.Events().UpdateStatusIf(ctx, p.SenderEventID, models.EventStatusSwappable, models.EventStatusSwapPending)
		if err != nil {
			return fmt.Errorf("блокировка события отправителя: %w", err)
		}
		if !ok {
			return conflictErrorf("событие %s уже участвует в другом обмене", p.SenderEventID)
		}

		ok, err = tx.Events().UpdateStatusIf(ctx, p.TargetEventID, models.EventStatusSwappable, models.EventStatusSwapPending)
		if err != nil {
			return fmt.Errorf("блокировка целевого события: %w", err)
		}
		if !ok {
			return conflictErrorf("событие %s уже участвует в другом обмене", p.TargetEventID)
		}

		if err := tx.Swaps().Create(ctx, request); err != nil {
			return fmt.Errorf("создание запроса на обмен: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.projCache.InvalidateIncoming(ctx, p.TargetUserID)
	return request, nil
}

// Resolve обрабатывает решение целевого пользователя по запросу на
// обмен и разблокирует оба события.
//
// accept: владельцы событий меняются местами, оба события возвращаются
// в Swappable уже у новых владельцев. reject: владельцы не меняются,
// оба события возвращаются в Swappable. Переход запроса
// pending -> терминальный статус выполняется условным обновлением
// первым шагом транзакции: повторный Resolve не тронет события.
func (e *Engine) Resolve(ctx context.Context, requestID uuid.UUID, decision Decision, callerID uuid.UUID) error {
	var terminal models.SwapStatus
	switch decision {
	case DecisionAccept:
		terminal = models.SwapStatusAccepted
	case DecisionReject:
		terminal = models.SwapStatusRejected
	default:
		return validationErrorf("недопустимое решение %q: ожидается accept или reject", decision)
	}

	request, err := e.store.Swaps().FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return notFoundErrorf("запрос на обмен %s не найден", requestID)
		}
		return err
	}

	if request.TargetUserID != callerID {
		return forbiddenErrorf("только получатель запроса может его принять или отклонить")
	}
	if request.Status != models.SwapStatusPending {
		return validationErrorf("запрос на обмен уже разрешён: статус %q", request.Status)
	}

	err = e.store.WithTx(ctx, func(tx storage.Store) error {
		ok, err := tx.Swaps().ResolveIf(ctx, requestID, terminal)
		if err != nil {
			return fmt.Errorf("разрешение запроса на обмен: %w", err)
		}
		if !ok {
			return conflictErrorf("запрос на обмен %s уже разрешён конкурентной операцией", requestID)
		}

		senderEvent, err := e.findEvent(ctx, tx, request.SenderEventID)
		if err != nil {
			return err
		}
		targetEvent, err := e.findEvent(ctx, tx, request.TargetEventID)
		if err != nil {
			return err
		}

		if decision == DecisionAccept {
			// Обмен владельцами: событие отправителя уходит цели и наоборот
			senderEvent.OwnerID = request.TargetUserID
			targetEvent.OwnerID = request.SenderUserID
		}
		senderEvent.Status = models.EventStatusSwappable
		targetEvent.Status = models.EventStatusSwappable

		if err := tx.Events().Update(ctx, senderEvent); err != nil {
			return fmt.Errorf("обновление события отправителя: %w", err)
		}
		if err := tx.Events().Update(ctx, targetEvent); err != nil {
			return fmt.Errorf("обновление целевого события: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.projCache.InvalidateIncoming(ctx, request.TargetUserID)
	return nil
}

func (e *Engine) findEvent(ctx context.Context, s storage.Store, id uuid.UUID) (*models.Event, error) {
	event, err := s.Events().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundErrorf("событие %s не найдено", id)
		}
		return nil, err
	}
	return event, nil
}
