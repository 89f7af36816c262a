package engine

import "sync/atomic"

// ReentrancyGuard - одноместный замок вокруг мутирующих точек входа.
//
// Модель исполнения транзакционная: каждая операция верхнего уровня
// выполняется до конца, но внешний коллаборатор может СИНХРОННО
// перезайти в движок внутри того же вызова (callback займа, event sink).
// Флаг in-flight отсекает такой перезаход немедленно, без блокировки:
// вложенная попытка получает ErrReentrantCall, состояние внешнего
// вызова остаётся нетронутым.
//
// Конкурентные вызовы верхнего уровня тоже отсекаются этим же флагом -
// для вызывающего это неотличимо от вложенного вызова, и ретрай на его
// стороне. Никакой отдельной дисциплины блокировок не требуется.
type ReentrancyGuard struct {
	inFlight atomic.Bool
}

// Enter занимает замок. Возвращает ErrReentrantCall, если защищённый
// вызов уже в полёте.
func (g *ReentrancyGuard) Enter() error {
	if !g.inFlight.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

// Exit освобождает замок. Вызывается через defer на ВСЕХ путях выхода,
// включая ошибочные.
func (g *ReentrancyGuard) Exit() {
	g.inFlight.Store(false)
}

// Locked возвращает true, пока защищённый вызов в полёте
func (g *ReentrancyGuard) Locked() bool {
	return g.inFlight.Load()
}
