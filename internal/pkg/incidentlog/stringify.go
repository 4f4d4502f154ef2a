package incidentlog

import (
	"fmt"
	"reflect"
)

var anyType = reflect.TypeFor[any]()

// StringifyDetails рекурсивно приводит произвольное значение к виду,
// безопасному для JSON.
//
// Скаляры (nil, bool, целые, вещественные, []byte, строки, включая
// именованные типы этих видов) возвращаются без изменений. Срезы и массивы
// обрабатываются поэлементно, map — по значениям с сохранением ключей;
// тип контейнера сохраняется, если преобразованные элементы в него
// помещаются, иначе используется []any или map[K]any. Всё остальное
// превращается в текст через fmt.Sprint.
//
// Повторное применение к результату ничего не меняет.
func StringifyDetails(v any) any {
	return stringifyValue(reflect.ValueOf(v))
}

func stringifyValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.Interface()

	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return stringifyValue(rv.Elem())

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 || rv.IsNil() {
			return rv.Interface()
		}
		return stringifySequence(rv, reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len()))

	case reflect.Array:
		return stringifySequence(rv, reflect.New(rv.Type()).Elem())

	case reflect.Map:
		if rv.IsNil() {
			return rv.Interface()
		}
		return stringifyMap(rv)

	default:
		return fmt.Sprint(rv.Interface())
	}
}

// stringifySequence заполняет out преобразованными элементами rv.
// Если элемент не помещается в тип out, возвращается []any.
func stringifySequence(rv, out reflect.Value) any {
	elemType := out.Type().Elem()
	converted := make([]any, rv.Len())
	fitsAll := true
	for i := range rv.Len() {
		converted[i] = stringifyValue(rv.Index(i))
		if fitsAll {
			if cv, ok := fit(converted[i], elemType); ok {
				out.Index(i).Set(cv)
			} else {
				fitsAll = false
			}
		}
	}
	if fitsAll {
		return out.Interface()
	}
	return converted
}

// stringifyMap преобразует значения map с сохранением ключей.
// Если значение не помещается в исходный тип, возвращается map[K]any.
func stringifyMap(rv reflect.Value) any {
	mapType := rv.Type()
	out := reflect.MakeMapWithSize(mapType, rv.Len())
	fallback := reflect.MakeMapWithSize(reflect.MapOf(mapType.Key(), anyType), rv.Len())
	fitsAll := true

	iter := rv.MapRange()
	for iter.Next() {
		converted := stringifyValue(iter.Value())
		fallback.SetMapIndex(iter.Key(), anyValue(converted))
		if fitsAll {
			if cv, ok := fit(converted, mapType.Elem()); ok {
				out.SetMapIndex(iter.Key(), cv)
			} else {
				fitsAll = false
			}
		}
	}
	if fitsAll {
		return out.Interface()
	}
	return fallback.Interface()
}

// fit проверяет, можно ли положить v в контейнер с элементами типа t.
func fit(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			return reflect.Zero(t), true
		default:
			return reflect.Value{}, false
		}
	}
	cv := reflect.ValueOf(v)
	if !cv.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	return cv, true
}

// anyValue возвращает reflect.Value типа any, в том числе для nil.
func anyValue(v any) reflect.Value {
	if v == nil {
		return reflect.Zero(anyType)
	}
	return reflect.ValueOf(v)
}

// stringifyAttrs применяет StringifyDetails к значениям details.
func stringifyAttrs(details map[string]any) map[string]any {
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = StringifyDetails(v)
	}
	return out
}
