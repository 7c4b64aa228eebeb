// Package registry 将服务实例注册到 Consul
package registry

import (
	"context"
	"fmt"
	"net"

	conf "koober/internal/conf/v1"

	"github.com/google/uuid"
	"github.com/hashicorp/consul/api"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultCheckInterval = "10s"

var Module = fx.Module("registry",
	fx.Provide(NewConsulRegistry),
)

// ConsulRegistry 启动时注册, 停止时注销; 未启用时所有操作为空操作
type ConsulRegistry struct {
	client       *api.Client
	registration *api.AgentServiceRegistration
	l            *zap.Logger
}

func NewConsulRegistry(lc fx.Lifecycle, cfg *conf.Bootstrap, serviceName conf.ServiceName, logger *zap.Logger) (*ConsulRegistry, error) {
	r, err := New(cfg, string(serviceName), logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: r.Register,
		OnStop:  r.Deregister,
	})
	return r, nil
}

func New(cfg *conf.Bootstrap, serviceName string, logger *zap.Logger) (*ConsulRegistry, error) {
	if cfg.Registry == nil || cfg.Registry.Consul == nil || !cfg.Registry.Consul.Enabled {
		return &ConsulRegistry{l: logger}, nil
	}
	consulCfg := cfg.Registry.Consul

	apiCfg := api.DefaultConfig()
	if consulCfg.Address != "" {
		apiCfg.Address = consulCfg.Address
	}
	if consulCfg.Scheme != "" {
		apiCfg.Scheme = consulCfg.Scheme
	}
	apiCfg.Token = consulCfg.Token

	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	interval := consulCfg.CheckInterval
	if interval == "" {
		interval = defaultCheckInterval
	}

	port := int(consulCfg.ServicePort)
	if port == 0 && cfg.Server != nil && cfg.Server.Http != nil {
		if _, p, err := net.SplitHostPort(cfg.Server.Http.Addr); err == nil {
			_, _ = fmt.Sscanf(p, "%d", &port)
		}
	}

	return &ConsulRegistry{
		client: client,
		registration: &api.AgentServiceRegistration{
			ID:      fmt.Sprintf("%s-%s", serviceName, uuid.NewString()),
			Name:    serviceName,
			Address: consulCfg.ServiceAddress,
			Port:    port,
			Tags:    []string{"connect", "auth"},
			Check: &api.AgentServiceCheck{
				TCP:                            net.JoinHostPort(consulCfg.ServiceAddress, fmt.Sprintf("%d", port)),
				Interval:                       interval,
				Timeout:                        "3s",
				DeregisterCriticalServiceAfter: "1m",
			},
		},
		l: logger,
	}, nil
}

func (r *ConsulRegistry) Enabled() bool {
	return r.client != nil
}

func (r *ConsulRegistry) Register(context.Context) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.client.Agent().ServiceRegister(r.registration); err != nil {
		return fmt.Errorf("register service to consul: %w", err)
	}
	r.l.Info("Service registered to consul",
		zap.String("id", r.registration.ID),
		zap.String("name", r.registration.Name),
	)
	return nil
}

func (r *ConsulRegistry) Deregister(context.Context) error {
	if !r.Enabled() {
		return nil
	}
	if err := r.client.Agent().ServiceDeregister(r.registration.ID); err != nil {
		r.l.Error("Failed to deregister service from consul", zap.Error(err))
		return err
	}
	r.l.Info("Service deregistered from consul", zap.String("id", r.registration.ID))
	return nil
}
