package config

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"net"
	"os"
	"path/filepath"
)

const paramFilename = "param.yaml"

type ServerConfig struct {
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool

	*ServerParam
}

func NewServerConfig(configDir string, debugMode bool, simulationMode bool) *ServerConfig {
	serverConfig := &ServerConfig{
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
	}

	// Check Configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Printf("Creation of config folder: %s", configDir)
			err = os.MkdirAll(configDir, 0770)
			if err != nil {
				logrus.Fatalf("Unable to create config folder: %v\n", err)
			}
		} else {
			logrus.Fatalf("Unable to access config folder: %s", configDir)
		}
	}

	// Open param file
	rawConfig, err := os.ReadFile(serverConfig.GetCompleteParamFilename())
	if err == nil {
		// Interpret param file
		serverConfig.ServerParam, err = ParseServerParam(rawConfig)
		if err != nil {
			logrus.Fatalf("Unable to interpret config file: %v\n", err)
		}
	} else {
		// Create default param file
		logrus.Infof("Create default param file")
		serverConfig.ServerParam = DefaultServerParam()
		serverConfig.SaveParam()
	}

	if simulationMode {
		serverConfig.ServerParam.Backend = BackendWindow
		serverConfig.ServerParam.Buttons = nil
	}

	return serverConfig
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) GetCompleteKeyFilename() string {
	return filepath.Join(sc.ConfigDir, "key.pem")
}

func (sc *ServerConfig) GetCompleteCertFilename() string {
	return filepath.Join(sc.ConfigDir, "cert.pem")
}

// GetCompleteAssetsDir returns "" when no asset override folder is configured.
func (sc *ServerConfig) GetCompleteAssetsDir() string {
	if sc.AssetsDir == "" {
		return ""
	}
	return sc.resolve(sc.AssetsDir)
}

func (sc *ServerConfig) GetCompleteFramePath() string {
	return sc.resolve(sc.File.Path)
}

// GetImageRoot returns the absolute folder used to resolve draw_image paths.
func (sc *ServerConfig) GetImageRoot() string {
	root := sc.ImageRoot
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return absRoot
}

// ClientAddress is the address local clients use to reach the command channel.
func (sc *ServerConfig) ClientAddress() string {
	host, port, err := net.SplitHostPort(sc.Listen)
	if err != nil {
		return sc.Listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func (sc *ServerConfig) SaveParam() {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(sc.ServerParam)
	if err != nil {
		logrus.Fatalf("Unable to serialize param file: %v\n", err)
	}
	err = os.WriteFile(sc.GetCompleteParamFilename(), rawConfig, 0660)
	if err != nil {
		logrus.Fatalf("Unable to save param file: %v\n", err)
	}
}

func (sc *ServerConfig) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(sc.ConfigDir, path)
}
