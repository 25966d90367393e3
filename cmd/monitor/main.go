package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"kinect_go/internal/config"
	"kinect_go/internal/discovery"
	"kinect_go/internal/mqtt"
	"kinect_go/internal/server"
	"kinect_go/pkg/logger"
)

func main() {
	// Flags da linha de comando
	brokerFlag := flag.String("broker", "", "Endereço do broker MQTT (sobrepõe config e mDNS)")
	topicFlag := flag.String("topic", "", "Tópico MQTT de estado de movimento")
	thresholdFlag := flag.Int64("threshold", 0, "Limiar de movimento (soma de pixels)")
	quietFlag := flag.Bool("quiet", false, "Suprime o log por avaliação")
	debugFlag := flag.Bool("debug", false, "Habilita log de depuração")
	statsFlag := flag.Bool("display-stats", false, "Exibe estatísticas periódicas de desempenho")
	flag.Parse()

	// Configurar diretório de logs
	logDir := filepath.Join(".", "logs")
	os.MkdirAll(logDir, 0755)

	// Inicializar logger
	logger.Init()
	if *debugFlag {
		logger.SetLevel(logger.DEBUG)
	}
	logger.EnableFileLogging(logDir, "kinect")
	defer logger.Sync()

	// Exibir banner de inicialização
	displayBanner()

	logger.Info("Iniciando Kinect Motion Monitor")

	// Carregar configurações
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Erro ao carregar configurações", err)
	}

	// Sobrepor configuração com flags da linha de comando
	if *brokerFlag != "" {
		cfg.MQTT.Broker = *brokerFlag
	}
	if *topicFlag != "" {
		cfg.MQTT.Topic = *topicFlag
	}
	if *thresholdFlag > 0 {
		cfg.Motion.Threshold = *thresholdFlag
	}
	if *quietFlag {
		cfg.Motion.Quiet = true
	}
	if *statsFlag {
		cfg.Motion.DisplayStats = true
	}
	logger.SetQuiet(cfg.Motion.Quiet)

	// Resolver o endereço do broker se não foi definido
	if cfg.MQTT.Broker == "" {
		resolveBroker(cfg)
	}

	logger.Infof("Configuração carregada: daemon em %s:%d, broker em %s:%d, limiar %d",
		cfg.Kinect.Host, cfg.Kinect.Port, cfg.MQTT.Broker, cfg.MQTT.Port, cfg.Motion.Threshold)

	// Conectar ao broker MQTT; esgotar as tentativas é fatal
	ctx := context.Background()
	mqttClient := mqtt.NewClient(cfg.MQTT)
	if err := mqttClient.Connect(ctx); err != nil {
		logger.Fatal("Erro ao conectar ao broker MQTT", err)
	}

	// Publicar o payload de autodescoberta do Home Assistant (retido)
	if err := mqttClient.PublishDiscovery(); err != nil {
		logger.Warnf("Erro ao publicar autodescoberta: %v", err)
	}

	// Criar e iniciar o servidor
	srv, err := server.NewServer(cfg, mqttClient)
	if err != nil {
		logger.Fatal("Erro ao criar servidor", err)
	}

	// Iniciar o servidor em uma goroutine separada
	go func() {
		logger.Infof("Servidor iniciado na porta %d", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Fatal("Erro ao iniciar o servidor", err)
		}
	}()

	// Configurar captura de sinais para shutdown gracioso
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Desligando monitor...")

	// Criar contexto com timeout para o shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Desligar o servidor (publica o estado final antes de fechar)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Erro durante o shutdown do servidor", err)
	}

	logger.Info("Monitor encerrado com sucesso")
}

// resolveBroker preenche o endereço do broker quando a configuração não o
// define: primeiro procura um broker anunciado via mDNS, depois pergunta no
// terminal e por fim assume localhost
func resolveBroker(cfg *config.Config) {
	logger.Info("Broker MQTT não configurado; procurando na rede local via mDNS")

	lookupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if addr, port, err := discovery.LookupBroker(lookupCtx); err == nil {
		cfg.MQTT.Broker = addr
		if port > 0 {
			cfg.MQTT.Port = port
		}
		return
	}

	// Sem broker na rede: perguntar no terminal
	fmt.Print("Broker MQTT não encontrado. Informe o endereço (vazio para localhost): ")
	reader := bufio.NewReader(os.Stdin)
	if line, err := reader.ReadString('\n'); err == nil {
		if entered := strings.TrimSpace(line); entered != "" {
			cfg.MQTT.Broker = entered
			return
		}
	}

	logger.Info("Assumindo broker MQTT em localhost")
	cfg.MQTT.Broker = "localhost"
}

// displayBanner exibe um banner de inicialização
func displayBanner() {
	banner := `
 _     _ _____ __   _ _______ _______ _______
 |____/    |   | \  | |______ |          |
 |    \_ __|__ |  \_| |______ |_____     |

 _______  _____  _______ _____  _____  __   _      _______  _____  __   _ _____ _______  _____   ______
 |  |  | |     |    |      |   |     | | \  |      |  |  | |     | | \  |   |      |    |     | |_____/
 |  |  | |_____|    |    __|__ |_____| |  \_|      |  |  | |_____| |  \_| __|__    |    |_____| |    \_  v1.0
 `
	fmt.Println(banner)
	fmt.Printf("Iniciando em %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
}
