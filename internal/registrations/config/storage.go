package config

// Драйверы хранилища регистраций.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// StorageConfig выбирает хранилище регистраций.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"REGISTRATIONS_STORAGE_DRIVER" env-default:"postgres"`
}

// UseMemory сообщает, нужно ли хранить регистрации в памяти процесса.
func (s *StorageConfig) UseMemory() bool {
	return s.Driver == StorageDriverMemory
}
