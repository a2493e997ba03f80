package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
	SecurityAdmin                       // Access token with the admin role
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names to
// their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	"health": SecurityPublic,

	// gRPC health service
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/List":  SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,

	// Cashier
	"cashier.open":               SecurityAccess,
	"cashier.current":            SecurityAccess,
	"cashier.list":               SecurityAccess,
	"cashier.get":                SecurityAccess,
	"cashier.summary":            SecurityAccess,
	"cashier.close":              SecurityAccess,
	"cashier.transaction.create": SecurityAccess,
	"cashier.transaction.list":   SecurityAccess,
	"cashier.transaction.get":    SecurityAccess,
	"cashier.transaction.cancel": SecurityAccess,
	"cashier.report.daily":       SecurityAdmin,
	"cashier.report.period":      SecurityAdmin,

	// Rentals
	"rental.create":          SecurityAccess,
	"rental.list":            SecurityAccess,
	"rental.get":             SecurityAccess,
	"rental.complete":        SecurityAccess,
	"rental.cancel":          SecurityAccess,
	"rental.send_to_cashier": SecurityAccess,
	"rental.check_overdue":   SecurityAdmin,

	// Payments
	"payment.create":  SecurityAccess,
	"payment.list":    SecurityAccess,
	"payment.get":     SecurityAccess,
	"payment.balance": SecurityAccess,

	// Items
	"item.create":         SecurityAdmin,
	"item.list":           SecurityAccess,
	"item.categories":     SecurityAccess,
	"item.get":            SecurityAccess,
	"item.update":         SecurityAdmin,
	"item.delete":         SecurityAdmin,
	"item.maintenance":    SecurityAccess,
	"item.pricing.get":    SecurityAccess,
	"item.pricing.update": SecurityAdmin,

	// Clients
	"client.create": SecurityAccess,
	"client.list":   SecurityAccess,
	"client.get":    SecurityAccess,
	"client.update": SecurityAccess,
	"client.delete": SecurityAdmin,

	// Reports
	"dashboard":  SecurityAccess,
	"audit.list": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a route name or RPC method
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
