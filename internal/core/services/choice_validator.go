package services

import (
	"fmt"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type choiceValidator struct{}

func NewChoiceValidator() ports.ChoiceValidator {
	return choiceValidator{}
}

// Resolve maps every reference to a choice of poll, in submission order. One
// bad reference rejects the whole batch. Repeated references count once.
func (choiceValidator) Resolve(poll *domain.Poll, refs []domain.ChoiceRef) ([]domain.Choice, error) {
	if poll == nil || len(refs) == 0 {
		return nil, domain.ErrInvalidChoice
	}

	seen := make(map[int64]struct{}, len(refs))
	choices := make([]domain.Choice, 0, len(refs))
	for _, ref := range refs {
		var (
			choice domain.Choice
			ok     bool
		)
		if ref.IsCode() {
			if ref.Code() != "" {
				choice, ok = poll.ChoiceByCode(ref.Code())
			}
		} else {
			choice, ok = poll.ChoiceByID(ref.ID())
		}
		if !ok || choice.PollID != poll.ID {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidChoice, ref.String())
		}

		if _, dup := seen[choice.ID]; dup {
			continue
		}
		seen[choice.ID] = struct{}{}
		choices = append(choices, choice)
	}
	return choices, nil
}
