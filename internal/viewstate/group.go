package viewstate

import (
	"context"
	"encoding/json"
	"slices"

	"petora-connect/internal/domain/groups"
	"petora-connect/internal/ports/changefeed"
)

type GroupAPI interface {
	JoinGroup(ctx context.Context, groupID string) (groups.Group, bool, error)
}

// GroupState es la vista de detalle de un grupo: pertenencia más chat.
type GroupState struct {
	MembershipState
	Messages []groups.Message
	Deleted  bool
}

type GroupView struct {
	groupID string
	userID  string
	api     GroupAPI
	store   *Store[GroupState]
}

func NewGroupView(g groups.Group, messages []groups.Message, userID string, api GroupAPI, n Notifier) *GroupView {
	return &GroupView{
		groupID: g.ID,
		userID:  userID,
		api:     api,
		store: NewStore(GroupState{
			MembershipState: MembershipState{Member: g.IsMember(userID), Count: g.MemberCount},
			Messages:        slices.Clone(messages),
		}, n),
	}
}

func (v *GroupView) State() GroupState { return v.store.State() }

// Join no hace nada si el usuario ya es miembro.
func (v *GroupView) Join(ctx context.Context) error {
	if v.store.State().Member {
		return nil
	}
	return v.store.Do(ctx, joinGroupOp(), func(ctx context.Context, _ GroupState) error {
		_, _, err := v.api.JoinGroup(ctx, v.groupID)
		return err
	})
}

func joinGroupOp() Op[GroupState] {
	j := Join()
	return Op[GroupState]{
		Name: j.Name,
		Forward: func(s GroupState) GroupState {
			s.MembershipState = j.Forward(s.MembershipState)
			return s
		},
		Inverse: func(s GroupState) GroupState {
			s.MembershipState = j.Inverse(s.MembershipState)
			return s
		},
	}
}

// Follow consume el topic groups/<id>: updates del grupo y mensajes nuevos.
func (v *GroupView) Follow(ctx context.Context, events <-chan changefeed.Event) error {
	return v.store.Follow(ctx, events, v.reduce)
}

func (v *GroupView) reduce(cur GroupState, ev changefeed.Event) GroupState {
	if ev.Topic != changefeed.Child(changefeed.TopicGroups, v.groupID) {
		return cur
	}
	switch ev.Type {
	case changefeed.Deleted:
		cur.Deleted = true
	case changefeed.Updated:
		var g groups.Group
		if err := json.Unmarshal(ev.Payload, &g); err == nil {
			cur.MembershipState = MembershipState{Member: g.IsMember(v.userID), Count: g.MemberCount}
		}
	case changefeed.Created:
		var m groups.Message
		if err := json.Unmarshal(ev.Payload, &m); err != nil {
			return cur
		}
		if slices.ContainsFunc(cur.Messages, func(x groups.Message) bool { return x.ID == m.ID }) {
			return cur
		}
		// El feed puede entregar fuera de orden; se inserta por CreatedAt y los empates
		// quedan en orden de llegada. Clip fuerza copia: los snapshots previos no cambian.
		at := slices.IndexFunc(cur.Messages, func(x groups.Message) bool { return x.CreatedAt.After(m.CreatedAt) })
		if at < 0 {
			at = len(cur.Messages)
		}
		cur.Messages = slices.Insert(slices.Clip(cur.Messages), at, m)
	}
	return cur
}
