package errors

import "google.golang.org/grpc/codes"

// DocuChat 服务代码: 21 (业务服务范围 20-79)
// 错误码格式: AABBCCC
// - AA: 21 (DocuChat 服务)
// - BB: 类别代码
// - CCC: 序号

var (
	// 请求参数错误 (类别 01)
	ErrDocInvalidRequest  = Register(New(MakeCode(ServiceDocuChat, CategoryRequest, 1), 400, codes.InvalidArgument, "Invalid request parameters", "请求参数无效"))
	ErrDocInvalidURL      = Register(New(MakeCode(ServiceDocuChat, CategoryRequest, 2), 400, codes.InvalidArgument, "Invalid URL format", "URL 格式无效"))
	ErrDocUnsupportedType = Register(New(MakeCode(ServiceDocuChat, CategoryRequest, 3), 400, codes.InvalidArgument, "Unsupported content type", "不支持的文件类型"))
	ErrDocInvalidCSV      = Register(New(MakeCode(ServiceDocuChat, CategoryRequest, 4), 400, codes.InvalidArgument, "Invalid CSV data", "CSV 数据无效"))
	ErrChatEmptyMessage   = Register(New(MakeCode(ServiceDocuChat, CategoryRequest, 5), 400, codes.InvalidArgument, "Message content is empty", "消息内容为空"))

	// 认证错误 (类别 02)
	ErrPasswordInvalid = Register(New(MakeCode(ServiceDocuChat, CategoryAuth, 1), 401, codes.Unauthenticated, "Incorrect email or password", "邮箱或密码错误"))

	// 资源错误 (类别 04)
	ErrProjectNotFound = Register(New(MakeCode(ServiceDocuChat, CategoryResource, 1), 404, codes.NotFound, "Project not found", "项目不存在"))
	ErrAgentNotFound   = Register(New(MakeCode(ServiceDocuChat, CategoryResource, 2), 404, codes.NotFound, "Agent not found", "智能体不存在"))
	ErrSessionNotFound = Register(New(MakeCode(ServiceDocuChat, CategoryResource, 3), 404, codes.NotFound, "Chat session not found", "会话不存在"))
	ErrDocNotFound     = Register(New(MakeCode(ServiceDocuChat, CategoryResource, 4), 404, codes.NotFound, "Document not found", "文档不存在"))
	ErrUserNotFound    = Register(New(MakeCode(ServiceDocuChat, CategoryResource, 5), 404, codes.NotFound, "User not found", "用户不存在"))

	// 冲突错误 (类别 05)
	ErrUserAlreadyExists = Register(New(MakeCode(ServiceDocuChat, CategoryConflict, 1), 409, codes.AlreadyExists, "User already exists", "用户已存在"))

	// 处理相关错误 (类别 07 - Internal)
	ErrDocIngestFailed  = Register(New(MakeCode(ServiceDocuChat, CategoryInternal, 1), 500, codes.Internal, "Document ingestion failed", "文档摄取失败"))
	ErrDocExtractFailed = Register(New(MakeCode(ServiceDocuChat, CategoryInternal, 2), 500, codes.Internal, "Content extraction failed", "内容提取失败"))
	ErrEmbeddingFailed  = Register(New(MakeCode(ServiceDocuChat, CategoryInternal, 3), 500, codes.Internal, "Embedding generation failed", "向量生成失败"))
	ErrRetrievalFailed  = Register(New(MakeCode(ServiceDocuChat, CategoryInternal, 4), 500, codes.Internal, "Context retrieval failed", "上下文检索失败"))

	// 网络/下游错误 (类别 10)
	ErrDocFetchFailed = Register(New(MakeCode(ServiceDocuChat, CategoryNetwork, 1), 502, codes.Unavailable, "Failed to fetch document source", "文档源获取失败"))
	ErrLLMUnavailable = Register(New(MakeCode(ServiceDocuChat, CategoryNetwork, 2), 503, codes.Unavailable, "Language model unavailable", "语言模型不可用"))
)
