package discord

import (
	"encoding/json"
	"strconv"
)

// Permissions is the 53+ bit permission set. The gateway serializes it as
// a decimal string.
type Permissions uint64

const (
	PermissionCreateInstantInvite Permissions = 1 << iota
	PermissionKickMembers
	PermissionBanMembers
	PermissionAdministrator
	PermissionManageChannels
	PermissionManageGuild
	PermissionAddReactions
	PermissionViewAuditLog
	PermissionPrioritySpeaker
	PermissionStream
	PermissionViewChannel
	PermissionSendMessages
	PermissionSendTTSMessages
	PermissionManageMessages
	PermissionEmbedLinks
	PermissionAttachFiles
	PermissionReadMessageHistory
	PermissionMentionEveryone
	PermissionUseExternalEmojis
	PermissionViewGuildInsights
	PermissionConnect
	PermissionSpeak
	PermissionMuteMembers
	PermissionDeafenMembers
	PermissionMoveMembers
	PermissionUseVAD
	PermissionChangeNickname
	PermissionManageNicknames
	PermissionManageRoles
	PermissionManageWebhooks
	PermissionManageEmojis
)

func (p Permissions) Has(bits Permissions) bool {
	return p&PermissionAdministrator != 0 || p&bits == bits
}

func (p Permissions) Add(bits Permissions) Permissions {
	return p | bits
}

func (p Permissions) Remove(bits Permissions) Permissions {
	return p &^ bits
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(p), 10))
}

func (p *Permissions) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		bits, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		*p = Permissions(bits)
	case float64:
		*p = Permissions(uint64(v))
	}
	return nil
}
