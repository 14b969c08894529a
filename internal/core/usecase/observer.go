package usecase

import (
	"github.com/kirillkom/oracion-board/internal/core/domain"
	"github.com/kirillkom/oracion-board/internal/core/ports"
)

type noopObserver struct{}

func (noopObserver) ObserveReflection(domain.Category)                 {}
func (noopObserver) ObserveVerdict(domain.Verdict)                     {}
func (noopObserver) ObserveSideEffect(string, domain.SideEffectStatus) {}

func observerOrNoop(o ports.Observer) ports.Observer {
	if o == nil {
		return noopObserver{}
	}
	return o
}
