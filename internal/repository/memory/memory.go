package memory

import (
	"bank_system/internal/repository"
)

var (
	_ repository.ClientRepository  = (*ClientRepository)(nil)
	_ repository.AccountRepository = (*AccountRepository)(nil)
)
