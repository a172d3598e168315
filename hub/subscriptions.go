// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hub

import (
	"context"
	"fmt"

	"github.com/blinklabs-io/hubd/address"
	"github.com/blinklabs-io/hubd/database"
	"github.com/blinklabs-io/hubd/database/models"
)

// Subscribe records that from follows to. Hub subscriptions require the
// target hub to exist.
func (m *Manager) Subscribe(
	ctx context.Context,
	from address.Address,
	to address.Address,
	subscriptionType SubscriptionType,
) (address.Address, error) {
	if err := validateSubscription(from, to, subscriptionType); err != nil {
		m.observe("Subscribe", err)
		return address.Address{}, err
	}
	addr := SubscriptionAddress(from, to)
	err := m.update(ctx, "Subscribe", func(txn *database.Txn) error {
		if subscriptionType == SubscriptionTypeHub {
			var hubRecord Hub
			if err := m.db.ReadRecord(txn, to, &hubRecord); err != nil {
				return err
			}
		}
		datetime := m.now()
		if err := m.db.CreateRecord(
			txn,
			addr,
			&Subscription{
				From:             from,
				To:               to,
				SubscriptionType: subscriptionType,
				Datetime:         datetime,
			},
		); err != nil {
			return err
		}
		return m.db.Metadata().AddSubscription(
			&models.Subscription{
				Datetime:         datetime,
				Address:          addr,
				From:             from,
				To:               to,
				SubscriptionType: uint8(subscriptionType),
			},
			txn.Metadata(),
		)
	})
	if err != nil {
		return address.Address{}, fmt.Errorf("subscribe: %w", err)
	}
	m.emit(
		SubscriptionCreatedEventType,
		SubscriptionEvent{
			Address: addr,
			From:    from,
			To:      to,
			Type:    subscriptionType,
		},
	)
	return addr, nil
}

func validateSubscription(
	from address.Address,
	to address.Address,
	subscriptionType SubscriptionType,
) error {
	switch subscriptionType {
	case SubscriptionTypeAccount, SubscriptionTypeHub:
	default:
		return fmt.Errorf(
			"%w: unknown subscription type %d",
			ErrInvalidSubscription,
			uint8(subscriptionType),
		)
	}
	if from == to {
		return fmt.Errorf("%w: cannot subscribe to self", ErrInvalidSubscription)
	}
	return nil
}

// Unsubscribe removes the subscription from from to to
func (m *Manager) Unsubscribe(
	ctx context.Context,
	from address.Address,
	to address.Address,
) error {
	addr := SubscriptionAddress(from, to)
	var record Subscription
	err := m.update(ctx, "Unsubscribe", func(txn *database.Txn) error {
		if err := m.db.ReadRecord(txn, addr, &record); err != nil {
			return err
		}
		if err := m.db.DeleteRecord(txn, addr); err != nil {
			return err
		}
		return m.db.Metadata().DeleteSubscription(addr, txn.Metadata())
	})
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	m.emit(
		SubscriptionRemovedEventType,
		SubscriptionEvent{
			Address: addr,
			From:    from,
			To:      to,
			Type:    record.SubscriptionType,
		},
	)
	return nil
}
