package utils

import (
	"context"
	"strings"
	"time"
)

func loginKey(parts ...string) string {
	return "login:" + strings.Join(parts, ":")
}

// LoginFailRecord increments the failure count of ip for the current hour and
// returns it. Without Redis it always returns 0.
func LoginFailRecord(ip string) int {
	cli := GetRedis()
	if cli == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := loginKey("failhour", ip, time.Now().Format("2006010215"))
	n, err := cli.Incr(ctx, key).Result()
	if err != nil {
		return 0
	}
	_ = cli.Expire(ctx, key, time.Hour).Err()
	return int(n)
}

// LoginIsBanned reports a temporary ban for ip. Redis errors fail open.
func LoginIsBanned(ip string) bool {
	cli := GetRedis()
	if cli == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	exists, err := cli.Exists(ctx, loginKey("ban", ip)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// LoginBan bans ip from signing in for d.
func LoginBan(ip string, d time.Duration) {
	cli := GetRedis()
	if cli == nil {
		return
	}
	if d <= 0 {
		d = time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = cli.Set(ctx, loginKey("ban", ip), "1", d).Err()
}
