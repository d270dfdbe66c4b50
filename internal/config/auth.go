package config

// Auth configures verification of bearer tokens issued by the identity provider.
type Auth struct {
	JWTSecret  string `env:"AUTH_JWT_SECRET,required,notEmpty"`
	JWTIssuer  string `env:"AUTH_JWT_ISSUER"`
	RolesClaim string `env:"AUTH_ROLES_CLAIM" envDefault:"roles"`
}
