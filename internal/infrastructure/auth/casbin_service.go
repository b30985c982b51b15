package auth

import (
	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/Alphonse-K/freres-unis/domain"
)

// CasbinService holds the enforcer backed by the casbin_rule table. The
// policy model maps role names to permission strings (p = role, perm);
// the rules are the role -> permission edges of the RBAC graph.
type CasbinService struct{ E *casbin.Enforcer }

func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(modelPath, adp)
	if err != nil {
		return nil, err
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, err
	}
	return &CasbinService{e}, nil
}

// EnforcerWrapper adapts *casbin.Enforcer to domain.PolicyEnforcer. The
// enforcer's GetFilteredPolicy has no error return; the wrapper normalizes
// the management API to error-returning signatures.
type EnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

var _ domain.PolicyEnforcer = (*EnforcerWrapper)(nil)

func NewEnforcerWrapper(e *casbin.Enforcer) *EnforcerWrapper {
	return &EnforcerWrapper{enforcer: e}
}

func (w *EnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *EnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *EnforcerWrapper) RemoveFilteredPolicy(fieldIndex int, fieldValues ...string) (bool, error) {
	return w.enforcer.RemoveFilteredPolicy(fieldIndex, fieldValues...)
}

func (w *EnforcerWrapper) GetFilteredPolicy(fieldIndex int, fieldValues ...string) ([][]string, error) {
	return w.enforcer.GetFilteredPolicy(fieldIndex, fieldValues...), nil
}

func (w *EnforcerWrapper) SavePolicy() error {
	return w.enforcer.SavePolicy()
}
