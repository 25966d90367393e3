package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"kinect_go/pkg/logger"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceName é o nome do serviço para descoberta na rede
	ServiceName = "kinect-motion-monitor"

	// ServiceDomain é o domínio para descoberta na rede
	ServiceDomain = "local."

	// ServiceType define o tipo de serviço anunciado
	ServiceType = "_kinectmon._tcp"

	// BrokerServiceType é o tipo de serviço procurado ao localizar um
	// broker MQTT na rede local
	BrokerServiceType = "_mqtt._tcp"

	// brokerLookupTimeout limita a espera pela resposta de um broker
	brokerLookupTimeout = 5 * time.Second
)

// DiscoveryService gerencia a descoberta do serviço na rede local
type DiscoveryService struct {
	server       *zeroconf.Server
	ctx          context.Context
	cancel       context.CancelFunc
	mutex        sync.Mutex
	instanceName string
	port         int
	running      bool
	serverIP     string
}

// NewDiscoveryService cria um novo serviço de descoberta
func NewDiscoveryService(port int) *DiscoveryService {
	ctx, cancel := context.WithCancel(context.Background())

	// Gerar um nome de instância único
	hostname, _ := os.Hostname()
	instanceName := fmt.Sprintf("%s-kinect", hostname)

	return &DiscoveryService{
		ctx:          ctx,
		cancel:       cancel,
		port:         port,
		instanceName: instanceName,
		running:      false,
	}
}

// Start inicia o anúncio do monitor via mDNS
func (s *DiscoveryService) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}

	// Obter o endereço IP local
	ip, err := s.getLocalIP()
	if err != nil {
		return fmt.Errorf("erro ao obter IP local: %w", err)
	}
	s.serverIP = ip

	// Iniciar o servidor zeroconf
	server, err := zeroconf.Register(
		s.instanceName, // Nome de instância
		ServiceType,    // Tipo de serviço
		ServiceDomain,  // Domínio
		s.port,         // Porta
		[]string{ // Metadados
			"version=1.0",
			fmt.Sprintf("ip=%s", ip),
			"name=Kinect Motion Monitor",
		},
		nil, // Interfaces de rede (todas)
	)

	if err != nil {
		return fmt.Errorf("erro ao registrar serviço de descoberta: %w", err)
	}

	s.server = server
	s.running = true

	logger.Infof("Serviço de descoberta iniciado em %s:%d (mDNS: %s.%s)",
		ip, s.port, s.instanceName, ServiceType)

	return nil
}

// Stop para o serviço de descoberta
func (s *DiscoveryService) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running {
		return
	}

	if s.server != nil {
		s.server.Shutdown()
		s.server = nil
	}

	s.cancel()
	s.running = false

	logger.Info("Serviço de descoberta parado")
}

// LookupBroker procura um broker MQTT anunciado via mDNS na rede local.
// Retorna o endereço do primeiro broker encontrado e sua porta, ou erro se
// nenhum responder dentro do tempo limite
func LookupBroker(ctx context.Context) (string, int, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", 0, fmt.Errorf("erro ao criar resolvedor mDNS: %w", err)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, brokerLookupTimeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 8)
	if err := resolver.Browse(lookupCtx, BrokerServiceType, ServiceDomain, entries); err != nil {
		return "", 0, fmt.Errorf("erro ao procurar broker MQTT via mDNS: %w", err)
	}

	for {
		select {
		case <-lookupCtx.Done():
			return "", 0, fmt.Errorf("nenhum broker MQTT encontrado na rede local")
		case entry, ok := <-entries:
			if !ok {
				return "", 0, fmt.Errorf("nenhum broker MQTT encontrado na rede local")
			}
			if entry == nil {
				continue
			}

			if len(entry.AddrIPv4) > 0 {
				addr := entry.AddrIPv4[0].String()
				logger.Infof("Broker MQTT descoberto via mDNS: %s:%d (%s)",
					addr, entry.Port, entry.Instance)
				return addr, entry.Port, nil
			}

			if entry.HostName != "" {
				logger.Infof("Broker MQTT descoberto via mDNS: %s:%d (%s)",
					entry.HostName, entry.Port, entry.Instance)
				return entry.HostName, entry.Port, nil
			}
		}
	}
}

// GetServerIP retorna o IP do servidor
func (s *DiscoveryService) GetServerIP() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.serverIP
}

// GetPort retorna a porta do servidor
func (s *DiscoveryService) GetPort() int {
	return s.port
}

// getLocalIP obtém o endereço IP local
func (s *DiscoveryService) getLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, addr := range addrs {
		// Verificar se é um endereço IP
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "", fmt.Errorf("não foi possível determinar o endereço IP local")
}

// GetInstanceName retorna o nome da instância do serviço
func (s *DiscoveryService) GetInstanceName() string {
	return s.instanceName
}

// IsRunning verifica se o serviço está em execução
func (s *DiscoveryService) IsRunning() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.running
}
