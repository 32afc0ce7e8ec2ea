// Файл: internal/integrations/registry.go
package integrations

import (
	"fmt"
	"sync"
)

type RegistryInterface interface {
	Register(provider AddressProvider) error
	Get(name string) (AddressProvider, error)
	SetActive(name string) error
	GetActive() (AddressProvider, error)
}

type Registry struct {
	providers map[string]AddressProvider
	active    string
	mu        sync.RWMutex
}

func NewRegistry() RegistryInterface {
	return &Registry{
		providers: make(map[string]AddressProvider),
	}
}

func (r *Registry) Register(provider AddressProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("провайдер с именем '%s' уже зарегистрирован", name)
	}

	r.providers[name] = provider
	return nil
}

func (r *Registry) Get(name string) (AddressProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("провайдер с именем '%s' не найден", name)
	}
	return provider, nil
}

func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return fmt.Errorf("невозможно установить активным провайдера '%s': он не зарегистрирован", name)
	}

	r.active = name
	return nil
}

// GetActive возвращает провайдера, выбранного через SetActive.
func (r *Registry) GetActive() (AddressProvider, error) {
	r.mu.RLock()
	activeName := r.active
	r.mu.RUnlock()

	if activeName == "" {
		return nil, fmt.Errorf("активный провайдер не установлен")
	}

	return r.Get(activeName)
}
