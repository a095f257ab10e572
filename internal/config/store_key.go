package config

import (
	"fmt"
)

type StoreKeyStruct struct{}

func NewStoreKeyStruct() *StoreKeyStruct {
	return &StoreKeyStruct{}
}

// CredentialKey returns the store key for a user's platform credential
func (r *StoreKeyStruct) CredentialKey(userID, provider string) string {
	return fmt.Sprintf("credential:%s:%s", provider, userID)
}

// CredentialPrefix returns the scan prefix for all credentials of a provider
func (r *StoreKeyStruct) CredentialPrefix(provider string) string {
	return fmt.Sprintf("credential:%s:", provider)
}

// NotificationKey returns the store key for one notification record
func (r *StoreKeyStruct) NotificationKey(userID, notificationID string) string {
	return fmt.Sprintf("user:%s:notification:%s", userID, notificationID)
}

// NotificationPrefix returns the scan prefix for a user's notification log
func (r *StoreKeyStruct) NotificationPrefix(userID string) string {
	return fmt.Sprintf("user:%s:notification:", userID)
}

// SettingsKey returns the store key for a user's settings
func (r *StoreKeyStruct) SettingsKey(userID string) string {
	return fmt.Sprintf("user:%s:settings", userID)
}

var StoreKey = NewStoreKeyStruct()
