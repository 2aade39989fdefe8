package auth

// Roles stored on the users table and carried in JWT claims.
const (
	RoleMember     = "member"
	RoleGymAdmin   = "gym_admin"
	RoleSuperAdmin = "super_admin"
)

// Actions checked through the policy evaluator. Every elevated endpoint
// performs exactly one HasPermission call instead of comparing roles inline.
const (
	ActionManagePlatform = "platform:manage" // dashboards, listings, status toggles, audit logs
	ActionManageGym      = "gym:manage"      // gym-scoped dashboards, capacity, force-checkout
)

// Actor is the authenticated principal resolved from the bearer token.
type Actor struct {
	UserID int
	Email  string
	Role   string
	GymID  *int // set for gym admins; nil otherwise
}

// Scope narrows an action to a resource. GymID zero means no gym scope.
type Scope struct {
	GymID int
}

// HasPermission is the single authorization decision point. Super admins may
// do anything; gym admins may manage only their own gym.
func HasPermission(actor Actor, action string, scope Scope) bool {
	switch actor.Role {
	case RoleSuperAdmin:
		return true
	case RoleGymAdmin:
		if action != ActionManageGym {
			return false
		}
		if scope.GymID == 0 {
			// Gym-scoped action without an explicit target resolves to the
			// admin's own gym.
			return actor.GymID != nil
		}
		return actor.GymID != nil && *actor.GymID == scope.GymID
	default:
		return false
	}
}
