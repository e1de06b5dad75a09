package bot

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// RoleManager mutates the configured privilege role through the Discord API.
// It satisfies service.RoleManager. The session is bound after the Bot is
// constructed, since the privilege service needs the manager before the
// session exists. An empty role ID turns both operations into no-ops so the
// bot can run without a role configured.
type RoleManager struct {
	mu      sync.RWMutex
	session *discordgo.Session
	guildID string
	roleID  string
}

// NewRoleManager creates a RoleManager bound to a guild and role.
func NewRoleManager(guildID, roleID string) *RoleManager {
	return &RoleManager{guildID: guildID, roleID: roleID}
}

// Bind attaches the discordgo session.
func (r *RoleManager) Bind(session *discordgo.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = session
}

// GrantRole adds the privilege role to a member.
func (r *RoleManager) GrantRole(userID string) error {
	session, ok := r.ready()
	if !ok {
		return nil
	}
	if session == nil {
		return fmt.Errorf("session not bound")
	}
	return session.GuildMemberRoleAdd(r.guildID, userID, r.roleID)
}

// RevokeRole removes the privilege role from a member.
func (r *RoleManager) RevokeRole(userID string) error {
	session, ok := r.ready()
	if !ok {
		return nil
	}
	if session == nil {
		return fmt.Errorf("session not bound")
	}
	return session.GuildMemberRoleRemove(r.guildID, userID, r.roleID)
}

// ready returns the session and whether role management is enabled at all.
func (r *RoleManager) ready() (*discordgo.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.roleID == "" {
		return nil, false
	}
	return r.session, true
}
