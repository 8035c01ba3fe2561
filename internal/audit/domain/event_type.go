// Package domain defines security audit events, their categories and risk levels.
package domain

// Category groups event types for filtering and risk inference.
type Category string

const (
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryEncryption     Category = "encryption"
	CategoryDataAccess     Category = "data_access"
	CategoryConfigChange   Category = "config_change"
	CategorySuspicious     Category = "suspicious_activity"
	CategorySystem         Category = "system"
)

// EventType is the closed set of security event kinds.
type EventType string

// Authentication events.
const (
	EventLoginSuccess           EventType = "LOGIN_SUCCESS"
	EventLoginFailed            EventType = "LOGIN_FAILED"
	EventLogout                 EventType = "LOGOUT"
	EventPasswordChanged        EventType = "PASSWORD_CHANGED"
	EventPasswordResetRequested EventType = "PASSWORD_RESET_REQUESTED"
	EventMFAEnabled             EventType = "MFA_ENABLED"
	EventMFADisabled            EventType = "MFA_DISABLED"
)

// Authorization events.
const (
	EventAccessGranted     EventType = "ACCESS_GRANTED"
	EventAccessDenied      EventType = "ACCESS_DENIED"
	EventPermissionChanged EventType = "PERMISSION_CHANGED"
	EventRoleChanged       EventType = "ROLE_CHANGED"
)

// Encryption and key lifecycle events.
const (
	EventEncryptionSuccess    EventType = "ENCRYPTION_SUCCESS"
	EventEncryptionFailed     EventType = "ENCRYPTION_FAILED"
	EventDecryptionSuccess    EventType = "DECRYPTION_SUCCESS"
	EventDecryptionFailed     EventType = "DECRYPTION_FAILED"
	EventKeyGenerated         EventType = "KEY_GENERATED"
	EventKeyRotated           EventType = "KEY_ROTATED"
	EventKeyPersistenceFailed EventType = "KEY_PERSISTENCE_FAILED"
)

// Data access events.
const (
	EventDataRead     EventType = "DATA_READ"
	EventDataCreated  EventType = "DATA_CREATED"
	EventDataUpdated  EventType = "DATA_UPDATED"
	EventDataDeleted  EventType = "DATA_DELETED"
	EventDataExported EventType = "DATA_EXPORTED"
)

// Configuration change events.
const (
	EventEmailConfigCreated EventType = "EMAIL_CONFIG_CREATED"
	EventEmailConfigUpdated EventType = "EMAIL_CONFIG_UPDATED"
	EventEmailConfigDeleted EventType = "EMAIL_CONFIG_DELETED"
	EventEmailConfigTested  EventType = "EMAIL_CONFIG_TESTED"
	EventSettingsChanged    EventType = "SETTINGS_CHANGED"
)

// Suspicious activity events.
const (
	EventSuspiciousActivity   EventType = "SUSPICIOUS_ACTIVITY"
	EventRateLimitExceeded    EventType = "RATE_LIMIT_EXCEEDED"
	EventBruteForceDetected   EventType = "BRUTE_FORCE_DETECTED"
	EventInvalidInputDetected EventType = "INVALID_INPUT_DETECTED"
)

// System events.
const (
	EventSystemError    EventType = "SYSTEM_ERROR"
	EventServiceStarted EventType = "SERVICE_STARTED"
	EventServiceStopped EventType = "SERVICE_STOPPED"
)

var eventCategories = map[EventType]Category{
	EventLoginSuccess:           CategoryAuthentication,
	EventLoginFailed:            CategoryAuthentication,
	EventLogout:                 CategoryAuthentication,
	EventPasswordChanged:        CategoryAuthentication,
	EventPasswordResetRequested: CategoryAuthentication,
	EventMFAEnabled:             CategoryAuthentication,
	EventMFADisabled:            CategoryAuthentication,

	EventAccessGranted:     CategoryAuthorization,
	EventAccessDenied:      CategoryAuthorization,
	EventPermissionChanged: CategoryAuthorization,
	EventRoleChanged:       CategoryAuthorization,

	EventEncryptionSuccess:    CategoryEncryption,
	EventEncryptionFailed:     CategoryEncryption,
	EventDecryptionSuccess:    CategoryEncryption,
	EventDecryptionFailed:     CategoryEncryption,
	EventKeyGenerated:         CategoryEncryption,
	EventKeyRotated:           CategoryEncryption,
	EventKeyPersistenceFailed: CategoryEncryption,

	EventDataRead:     CategoryDataAccess,
	EventDataCreated:  CategoryDataAccess,
	EventDataUpdated:  CategoryDataAccess,
	EventDataDeleted:  CategoryDataAccess,
	EventDataExported: CategoryDataAccess,

	EventEmailConfigCreated: CategoryConfigChange,
	EventEmailConfigUpdated: CategoryConfigChange,
	EventEmailConfigDeleted: CategoryConfigChange,
	EventEmailConfigTested:  CategoryConfigChange,
	EventSettingsChanged:    CategoryConfigChange,

	EventSuspiciousActivity:   CategorySuspicious,
	EventRateLimitExceeded:    CategorySuspicious,
	EventBruteForceDetected:   CategorySuspicious,
	EventInvalidInputDetected: CategorySuspicious,

	EventSystemError:    CategorySystem,
	EventServiceStarted: CategorySystem,
	EventServiceStopped: CategorySystem,
}

// Category returns the category of a known event type and CategorySystem for
// anything else.
func (t EventType) Category() Category {
	if c, ok := eventCategories[t]; ok {
		return c
	}
	return CategorySystem
}

// IsValid reports whether t is one of the declared event types.
func (t EventType) IsValid() bool {
	_, ok := eventCategories[t]
	return ok
}

// AllEventTypes returns every declared event type.
func AllEventTypes() []EventType {
	types := make([]EventType, 0, len(eventCategories))
	for t := range eventCategories {
		types = append(types, t)
	}
	return types
}
