package engine

// AccessController хранит единственную личность контроллера.
//
// Привилегированные операции (addSupportedAsset, pause, unpause,
// executeArbitrage, transferControl) выполняются только для текущего
// контроллера. Смена контроллера атомарна: прежний немедленно теряет
// весь привилегированный доступ.
type AccessController struct {
	controller string
}

// NewAccessController создаёт контроллер доступа с начальной личностью
func NewAccessController(controller string) (*AccessController, error) {
	if controller == "" {
		return nil, ErrZeroIdentity
	}
	return &AccessController{controller: controller}, nil
}

// Controller возвращает текущую личность контроллера
func (a *AccessController) Controller() string { return a.controller }

// Require возвращает ошибку авторизации, если caller не контроллер
func (a *AccessController) Require(caller string) error {
	if caller == "" || caller != a.controller {
		return ErrNotController
	}
	return nil
}

// Transfer меняет личность контроллера. Только текущий контроллер
// может передать управление; пустая новая личность отклоняется.
func (a *AccessController) Transfer(caller, newController string) error {
	if err := a.Require(caller); err != nil {
		return err
	}
	if newController == "" {
		return ErrZeroIdentity
	}
	a.controller = newController
	return nil
}
