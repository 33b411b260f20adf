package response

import "github.com/gin-gonic/gin"

type Resp struct {
	Code   int         `json:"code"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data"`
	Detail string      `json:"detail,omitempty"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

func Created(data interface{}) Resp {
	return New(CodeCreated, CodeMsgMap[CodeCreated], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// WithDetail 附带排查信息，只在非 prod 环境使用
func (r Resp) WithDetail(d string) Resp {
	r.Detail = d
	return r
}

// Write HTTP 状态码取 r.Code
func Write(c *gin.Context, r Resp) { c.JSON(r.Code, r) }

func Abort(c *gin.Context, r Resp) { c.AbortWithStatusJSON(r.Code, r) }
