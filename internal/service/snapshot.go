package service

import "github.com/agenthands/forcematch/internal/core/model"

// snapshot pins the dataset a run reads so a concurrent reload cannot change
// it mid-search.
type snapshot model.Dataset

func (s snapshot) GetAllCharacters() model.Dataset {
	return model.Dataset(s)
}
