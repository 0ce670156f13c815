package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ==================== IPRateLimiter 按 IP 限流 ====================

// IPRateLimiter 每个客户端 IP 一个令牌桶
// 用于注册 / 登录等易被暴力调用的接口
type IPRateLimiter struct {
	visitors sync.Map // ip -> *visitor
	rate     rate.Limit
	burst    int
}

// visitor 限流条目
type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewIPRateLimiter 创建限流器，rps 为每秒补充的令牌数
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		rate:  rate.Limit(rps),
		burst: burst,
	}
}

// Allow 检查 key 是否还有令牌
func (l *IPRateLimiter) Allow(key string) bool {
	actual, _ := l.visitors.LoadOrStore(key, &visitor{limiter: rate.NewLimiter(l.rate, l.burst)})
	v := actual.(*visitor)

	v.mu.Lock()
	v.lastSeen = time.Now()
	v.mu.Unlock()

	return v.limiter.Allow()
}

// Middleware Gin 中间件，超出限制返回 429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			zap.L().Warn("rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Cleanup 删除超过 maxIdle 未访问的条目，返回删除数量
func (l *IPRateLimiter) Cleanup(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	l.visitors.Range(func(key, val any) bool {
		v := val.(*visitor)
		v.mu.Lock()
		idle := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if idle {
			l.visitors.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Size 当前跟踪的客户端数量
func (l *IPRateLimiter) Size() int {
	n := 0
	l.visitors.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
