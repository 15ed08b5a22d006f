package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// FormPayloadKey returns the cache key for a form's raw definition payload
func (r *CacheKeyStruct) FormPayloadKey(formName string) string {
	return fmt.Sprintf("form:%s:payload", formName)
}

// RespondentAnswersKey returns the cache key for a respondent's autosaved answers
func (r *CacheKeyStruct) RespondentAnswersKey(formName, email string) string {
	return fmt.Sprintf("form:%s:respondent:%s:answers", formName, email)
}

var CacheKey = NewCacheKeyStruct()
