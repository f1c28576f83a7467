// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package traceio

import (
	"context"
	"fmt"

	"github.com/asvela/keyoscacquire"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Newest traces kept per instrument.
const redisHistory = 1000

// Publishes traces on a Redis channel and keeps a capped history list per
// instrument serial.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	listKey string
}

func NewRedisPublisher(ctx context.Context, addr, channel, serial string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", addr)
	}
	glog.Infof("Publishing traces to redis %s channel '%s'", addr, channel)
	return &RedisPublisher{
		client:  client,
		channel: channel,
		listKey: HistoryKey(serial),
	}, nil
}

// List holding the newest traces of one instrument.
func HistoryKey(serial string) string {
	return fmt.Sprintf("keyoscacquire:%s:traces", serial)
}

func (p *RedisPublisher) Publish(ctx context.Context, trace *keyoscacquire.Trace, header string) error {
	data, err := EncodeJSON(trace, header)
	if err != nil {
		return err
	}
	if err = p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return errors.Wrap(err, "publishing trace")
	}
	// The history is a convenience, publishing already succeeded.
	if err = p.client.LPush(ctx, p.listKey, data).Err(); err != nil {
		glog.Warningf("Storing trace in '%s' failed: %v", p.listKey, err)
		return nil
	}
	p.client.LTrim(ctx, p.listKey, 0, redisHistory-1)
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
