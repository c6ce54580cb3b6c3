package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DatabaseConfig descreve o primário e, opcionalmente, uma réplica de leitura.
// ReadHost e ReadPort vazios apontam para o primário.
type DatabaseConfig struct {
	WriteHost      string
	WritePort      string
	ReadHost       string
	ReadPort       string
	Name           string
	User           string
	Password       string
	MaxConnections int
}

func (c DatabaseConfig) readEndpoint() (string, string) {
	host, port := c.ReadHost, c.ReadPort
	if host == "" {
		host = c.WriteHost
	}
	if port == "" {
		port = c.WritePort
	}
	return host, port
}

// HasReplica indica se as leituras vão para outro servidor.
func (c DatabaseConfig) HasReplica() bool {
	host, port := c.readEndpoint()
	return host != c.WriteHost || port != c.WritePort
}

// ReadWriteClient separa leitura e escrita. Sem réplica os dois lados usam o mesmo pool.
type ReadWriteClient struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewReadWriteClient(config DatabaseConfig) (*ReadWriteClient, error) {
	writePool, err := NewPostgresClient(config.WriteHost, config.WritePort, config.Name, config.User, config.Password, config.MaxConnections)
	if err != nil {
		return nil, fmt.Errorf("ReadWriteClient - write pool: %w", err)
	}

	if !config.HasReplica() {
		return &ReadWriteClient{readPool: writePool, writePool: writePool}, nil
	}

	readHost, readPort := config.readEndpoint()
	readPool, err := NewPostgresClient(readHost, readPort, config.Name, config.User, config.Password, config.MaxConnections)
	if err != nil {
		writePool.Close()
		return nil, fmt.Errorf("ReadWriteClient - read pool: %w", err)
	}

	return &ReadWriteClient{
		readPool:  readPool,
		writePool: writePool,
	}, nil
}

func (rwc *ReadWriteClient) GetReadPool() *pgxpool.Pool {
	return rwc.readPool
}

func (rwc *ReadWriteClient) GetWritePool() *pgxpool.Pool {
	return rwc.writePool
}

// Ping verifica o primário e, se houver, a réplica.
func (rwc *ReadWriteClient) Ping(ctx context.Context) error {
	if err := rwc.writePool.Ping(ctx); err != nil {
		return fmt.Errorf("ReadWriteClient.Ping - primary: %w", err)
	}
	if rwc.readPool != rwc.writePool {
		if err := rwc.readPool.Ping(ctx); err != nil {
			return fmt.Errorf("ReadWriteClient.Ping - replica: %w", err)
		}
	}
	return nil
}

func (rwc *ReadWriteClient) Close() {
	rwc.writePool.Close()
	if rwc.readPool != rwc.writePool {
		rwc.readPool.Close()
	}
}
