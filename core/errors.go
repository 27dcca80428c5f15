package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 逐条（per-record）错误通过 Field 指明出错的字段
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 模型加载错误：MALFORMED_SPECIFICATION, UNSUPPORTED_MODEL_KIND（加载期，致命）
//   - 打分错误：MISSING_FIELD, NON_NUMERIC_VALUE（逐条，可恢复）
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "MISSING_FIELD", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "model", "score", "store"）
	Field   string // 出错的字段名（仅逐条错误使用，其余为空）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// NewFieldError 创建带字段名的逐条错误（MISSING_FIELD / NON_NUMERIC_VALUE 等）
func NewFieldError(module, code, field, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

// 错误代码常量
const (
	// 模型加载错误代码（致命，中止 Stage 初始化）
	ErrorCodeMalformedSpecification = "MALFORMED_SPECIFICATION" // 规格结构缺失或不一致
	ErrorCodeUnsupportedModelKind   = "UNSUPPORTED_MODEL_KIND"  // 计算类型未实现

	// 打分错误代码（逐条，可恢复，由调用方决定丢弃/死信/重试）
	ErrorCodeMissingField    = "MISSING_FIELD"     // 记录缺少声明的预测字段
	ErrorCodeNonNumericValue = "NON_NUMERIC_VALUE" // 字段存在但无法转为数值

	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleModel   = "model"   // 模型规格模块
	ModuleScore   = "score"   // 打分模块
	ModuleStore   = "store"   // 存储模块
	ModuleFeature = "feature" // 特征模块
	ModuleService = "service" // 远程服务模块
)

// 通用错误检查函数

// IsMalformedSpecification 检查错误是否为规格结构错误
func IsMalformedSpecification(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeMalformedSpecification
	}
	return false
}

// IsUnsupportedModelKind 检查错误是否为模型类型不支持
func IsUnsupportedModelKind(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnsupportedModelKind
	}
	return false
}

// IsMissingField 检查错误是否为记录缺少预测字段
func IsMissingField(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeMissingField
	}
	return false
}

// IsNonNumericValue 检查错误是否为字段无法转为数值
func IsNonNumericValue(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNonNumericValue
	}
	return false
}

// IsRecoverable 检查错误是否为逐条可恢复错误。
// 逐条错误只影响单条记录，不应中止批处理/流式处理中的后续记录。
func IsRecoverable(err error) bool {
	return IsMissingField(err) || IsNonNumericValue(err)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}
